package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/venturelink/venturelink/internal/database/testutil"
	"github.com/venturelink/venturelink/internal/models"
	"github.com/venturelink/venturelink/internal/realtime"
)

func newDealService(t *testing.T, db *gorm.DB) (*DealService, *NotificationService) {
	t.Helper()

	notifications, err := NewNotificationService(db, realtime.NewHub())
	require.NoError(t, err)
	requests, err := NewRequestService(db, notifications)
	require.NoError(t, err)
	svc, err := NewDealService(db, requests, notifications)
	require.NoError(t, err)
	return svc, notifications
}

func TestCreateDealRequiresConnection(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	founder := seedUser(t, db, "founder-d1", "Alice", models.RoleEntrepreneur)
	investor := seedUser(t, db, "investor-d1", "Bob", models.RoleInvestor)

	svc, _ := newDealService(t, db)

	_, err := svc.Create(context.Background(), founder.ID, CreateDealInput{
		InvestorID: investor.ID,
		Title:      "Seed round",
		Amount:     500000,
	})
	require.Error(t, err)
}

func TestCreateDealNotifiesInvestor(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	founder := seedUser(t, db, "founder-d2", "Alice Founder", models.RoleEntrepreneur)
	investor := seedUser(t, db, "investor-d2", "Bob Investor", models.RoleInvestor)
	connectUsers(t, db, founder.ID, investor.ID)

	svc, notifications := newDealService(t, db)

	ctx := context.Background()
	deal, err := svc.Create(ctx, founder.ID, CreateDealInput{
		InvestorID:  investor.ID,
		Title:       "Seed round",
		Description: "Raising our first institutional capital",
		Amount:      500000,
		EquityPct:   10,
	})
	require.NoError(t, err)
	require.Equal(t, models.DealProposed, deal.Status)

	items, err := notifications.ListForUser(ctx, ListNotificationsInput{RecipientID: investor.ID})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, models.NotifyDealCreated, items[0].Type)
	require.Equal(t, deal.ID, items[0].Link.ID)
}

func TestInvestActivatesProposedDeal(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	founder := seedUser(t, db, "founder-d3", "Alice", models.RoleEntrepreneur)
	investor := seedUser(t, db, "investor-d3", "Bob", models.RoleInvestor)
	connectUsers(t, db, founder.ID, investor.ID)

	svc, notifications := newDealService(t, db)

	ctx := context.Background()
	deal, err := svc.Create(ctx, founder.ID, CreateDealInput{
		InvestorID: investor.ID,
		Title:      "Seed round",
		Amount:     500000,
	})
	require.NoError(t, err)

	investment, err := svc.Invest(ctx, investor.ID, deal.ID, 250000)
	require.NoError(t, err)
	require.Equal(t, models.InvestmentCommitted, investment.Status)

	reloaded, err := svc.Get(ctx, founder.ID, deal.ID)
	require.NoError(t, err)
	require.Equal(t, models.DealActive, reloaded.Status)

	// Entrepreneur hears about the committed capital.
	items, err := notifications.ListForUser(ctx, ListNotificationsInput{RecipientID: founder.ID})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, models.NotifyInvestmentReceived, items[0].Type)
}

func TestInvestRestrictedToDealInvestor(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	founder := seedUser(t, db, "founder-d4", "Alice", models.RoleEntrepreneur)
	investor := seedUser(t, db, "investor-d4", "Bob", models.RoleInvestor)
	seedUser(t, db, "outsider-d4", "Carol", models.RoleInvestor)
	connectUsers(t, db, founder.ID, investor.ID)

	svc, _ := newDealService(t, db)

	ctx := context.Background()
	deal, err := svc.Create(ctx, founder.ID, CreateDealInput{
		InvestorID: investor.ID,
		Title:      "Seed round",
		Amount:     500000,
	})
	require.NoError(t, err)

	_, err = svc.Invest(ctx, "outsider-d4", deal.ID, 1000)
	require.Error(t, err)
	_, err = svc.Invest(ctx, founder.ID, deal.ID, 1000)
	require.Error(t, err)
}

func TestMarkInvestmentPaidIdempotent(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	founder := seedUser(t, db, "founder-d5", "Alice", models.RoleEntrepreneur)
	investor := seedUser(t, db, "investor-d5", "Bob", models.RoleInvestor)
	connectUsers(t, db, founder.ID, investor.ID)

	svc, notifications := newDealService(t, db)

	ctx := context.Background()
	deal, err := svc.Create(ctx, founder.ID, CreateDealInput{
		InvestorID: investor.ID,
		Title:      "Seed round",
		Amount:     500000,
	})
	require.NoError(t, err)

	investment, err := svc.Invest(ctx, investor.ID, deal.ID, 250000)
	require.NoError(t, err)

	// Only the entrepreneur can confirm payment.
	_, err = svc.MarkInvestmentPaid(ctx, investor.ID, investment.ID)
	require.Error(t, err)

	paid, err := svc.MarkInvestmentPaid(ctx, founder.ID, investment.ID)
	require.NoError(t, err)
	require.Equal(t, models.InvestmentPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	// Confirming again changes nothing and sends no second notification.
	before, err := notifications.UnreadCount(ctx, investor.ID)
	require.NoError(t, err)

	again, err := svc.MarkInvestmentPaid(ctx, founder.ID, investment.ID)
	require.NoError(t, err)
	require.Equal(t, models.InvestmentPaid, again.Status)

	after, err := notifications.UnreadCount(ctx, investor.ID)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestUpdateStatusNotifiesCounterparty(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	founder := seedUser(t, db, "founder-d6", "Alice", models.RoleEntrepreneur)
	investor := seedUser(t, db, "investor-d6", "Bob", models.RoleInvestor)
	connectUsers(t, db, founder.ID, investor.ID)

	svc, notifications := newDealService(t, db)

	ctx := context.Background()
	deal, err := svc.Create(ctx, founder.ID, CreateDealInput{
		InvestorID: investor.ID,
		Title:      "Seed round",
		Amount:     500000,
	})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, investor.ID, deal.ID, models.DealCancelled)
	require.NoError(t, err)
	require.Equal(t, models.DealCancelled, updated.Status)

	items, err := notifications.ListForUser(ctx, ListNotificationsInput{RecipientID: founder.ID})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, models.NotifyDealUpdated, items[0].Type)
}

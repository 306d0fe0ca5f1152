package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/venturelink/venturelink/internal/database/testutil"
	"github.com/venturelink/venturelink/internal/models"
	"github.com/venturelink/venturelink/internal/realtime"
)

func TestSendAndAcceptFlow(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	founder := seedUser(t, db, "founder-1", "Alice Founder", models.RoleEntrepreneur)
	investor := seedUser(t, db, "investor-1", "Bob Investor", models.RoleInvestor)

	notifications, err := NewNotificationService(db, realtime.NewHub())
	require.NoError(t, err)
	svc, err := NewRequestService(db, notifications)
	require.NoError(t, err)

	ctx := context.Background()
	request, err := svc.Send(ctx, founder.ID, investor.ID, "Let's talk about the seed round")
	require.NoError(t, err)
	require.Equal(t, models.RequestPending, request.Status)

	// The recipient got a CONNECTION_REQUEST notification linking the request.
	items, err := notifications.ListForUser(ctx, ListNotificationsInput{RecipientID: investor.ID})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, models.NotifyConnectionRequest, items[0].Type)
	require.Equal(t, request.ID, items[0].Link.ID)

	accepted, err := svc.Accept(ctx, investor.ID, request.ID)
	require.NoError(t, err)
	require.Equal(t, models.RequestAccepted, accepted.Status)
	require.NotNil(t, accepted.RespondedAt)

	connected, err := svc.AreConnected(ctx, founder.ID, investor.ID)
	require.NoError(t, err)
	require.True(t, connected)

	// Acceptance notified the original sender.
	items, err = notifications.ListForUser(ctx, ListNotificationsInput{RecipientID: founder.ID})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, models.NotifyRequestAccepted, items[0].Type)
}

func TestSendRejectsDuplicatePair(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	founder := seedUser(t, db, "founder-2", "Alice", models.RoleEntrepreneur)
	investor := seedUser(t, db, "investor-2", "Bob", models.RoleInvestor)

	notifications, err := NewNotificationService(db, realtime.NewHub())
	require.NoError(t, err)
	svc, err := NewRequestService(db, notifications)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = svc.Send(ctx, founder.ID, investor.ID, "")
	require.NoError(t, err)

	// Same pair, either direction, is a conflict while pending.
	_, err = svc.Send(ctx, founder.ID, investor.ID, "")
	require.Error(t, err)
	_, err = svc.Send(ctx, investor.ID, founder.ID, "")
	require.Error(t, err)
}

func TestSendRejectsSelf(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	founder := seedUser(t, db, "founder-3", "Alice", models.RoleEntrepreneur)

	notifications, err := NewNotificationService(db, realtime.NewHub())
	require.NoError(t, err)
	svc, err := NewRequestService(db, notifications)
	require.NoError(t, err)

	_, err = svc.Send(context.Background(), founder.ID, founder.ID, "")
	require.Error(t, err)
}

func TestOnlyRecipientMayRespond(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	founder := seedUser(t, db, "founder-4", "Alice", models.RoleEntrepreneur)
	investor := seedUser(t, db, "investor-4", "Bob", models.RoleInvestor)
	outsider := seedUser(t, db, "outsider-4", "Mallory", models.RoleInvestor)

	notifications, err := NewNotificationService(db, realtime.NewHub())
	require.NoError(t, err)
	svc, err := NewRequestService(db, notifications)
	require.NoError(t, err)

	ctx := context.Background()
	request, err := svc.Send(ctx, founder.ID, investor.ID, "")
	require.NoError(t, err)

	_, err = svc.Accept(ctx, founder.ID, request.ID)
	require.Error(t, err)
	_, err = svc.Accept(ctx, outsider.ID, request.ID)
	require.Error(t, err)
}

func TestDeclineDoesNotNotifySender(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	founder := seedUser(t, db, "founder-5", "Alice", models.RoleEntrepreneur)
	investor := seedUser(t, db, "investor-5", "Bob", models.RoleInvestor)

	notifications, err := NewNotificationService(db, realtime.NewHub())
	require.NoError(t, err)
	svc, err := NewRequestService(db, notifications)
	require.NoError(t, err)

	ctx := context.Background()
	request, err := svc.Send(ctx, founder.ID, investor.ID, "")
	require.NoError(t, err)

	declined, err := svc.Decline(ctx, investor.ID, request.ID)
	require.NoError(t, err)
	require.Equal(t, models.RequestDeclined, declined.Status)

	// A declined request is silent toward the sender.
	items, err := notifications.ListForUser(ctx, ListNotificationsInput{RecipientID: founder.ID})
	require.NoError(t, err)
	require.Empty(t, items)

	// Responding twice is a conflict.
	_, err = svc.Accept(ctx, investor.ID, request.ID)
	require.Error(t, err)
}

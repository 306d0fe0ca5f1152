package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/venturelink/venturelink/internal/database/testutil"
	"github.com/venturelink/venturelink/internal/models"
	"github.com/venturelink/venturelink/internal/realtime"
)

func seedUser(t *testing.T, db *gorm.DB, id, name, role string) *models.User {
	t.Helper()

	user := models.User{
		ID:       id,
		Email:    id + "@example.com",
		Password: "hashed",
		Name:     name,
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func connectUsers(t *testing.T, db *gorm.DB, a, b string) {
	t.Helper()

	now := time.Now().UTC()
	request := models.ConnectionRequest{
		SenderID:    a,
		RecipientID: b,
		Status:      models.RequestAccepted,
		RespondedAt: &now,
	}
	require.NoError(t, db.Create(&request).Error)
}

func TestNotifyPersistsBeforeDelivery(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	sender := seedUser(t, db, "sender-1", "Alice Founder", models.RoleEntrepreneur)
	recipient := seedUser(t, db, "recipient-1", "Bob Investor", models.RoleInvestor)

	svc, err := NewNotificationService(db, realtime.NewHub())
	require.NoError(t, err)

	ctx := context.Background()
	dto, err := svc.Notify(ctx, NotifyInput{
		SenderID:    sender.ID,
		RecipientID: recipient.ID,
		Type:        models.NotifyConnectionRequest,
		Message:     "Alice Founder sent you a connection request",
		Link:        &Link{Entity: models.LinkEntityRequest, ID: "req-1"},
	})
	require.NoError(t, err)
	require.False(t, dto.IsRead)
	require.NotNil(t, dto.Sender)
	require.Equal(t, "Alice Founder", dto.Sender.Name)
	require.False(t, dto.Sender.Online)
	require.NotNil(t, dto.Link)
	require.Equal(t, models.LinkEntityRequest, dto.Link.Entity)

	// The record survives even though the recipient had no live connection.
	var stored models.Notification
	require.NoError(t, db.Where("id = ?", dto.ID).First(&stored).Error)
	require.Equal(t, recipient.ID, stored.RecipientID)
	require.False(t, stored.IsRead)
}

func TestNotifyRejectsUnknownType(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	recipient := seedUser(t, db, "recipient-2", "Bob", models.RoleInvestor)

	svc, err := NewNotificationService(db, realtime.NewHub())
	require.NoError(t, err)

	_, err = svc.Notify(context.Background(), NotifyInput{
		RecipientID: recipient.ID,
		Type:        "SOMETHING_ELSE",
		Message:     "hello",
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestNotifyRejectsLinkEntityMismatch(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	recipient := seedUser(t, db, "recipient-3", "Bob", models.RoleInvestor)

	svc, err := NewNotificationService(db, realtime.NewHub())
	require.NoError(t, err)

	_, err = svc.Notify(context.Background(), NotifyInput{
		RecipientID: recipient.ID,
		Type:        models.NotifyNewMessage,
		Message:     "New message from Alice",
		Link:        &Link{Entity: models.LinkEntityDeal, ID: "deal-1"},
	})
	require.Error(t, err)
}

func TestMarkReadIsIdempotent(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	recipient := seedUser(t, db, "recipient-4", "Bob", models.RoleInvestor)

	svc, err := NewNotificationService(db, realtime.NewHub())
	require.NoError(t, err)

	ctx := context.Background()
	dto, err := svc.Notify(ctx, NotifyInput{
		RecipientID: recipient.ID,
		Type:        models.NotifyDealUpdated,
		Message:     "Deal status changed",
	})
	require.NoError(t, err)

	first, err := svc.MarkRead(ctx, recipient.ID, dto.ID)
	require.NoError(t, err)
	require.True(t, first.IsRead)
	require.NotNil(t, first.ReadAt)

	second, err := svc.MarkRead(ctx, recipient.ID, dto.ID)
	require.NoError(t, err)
	require.True(t, second.IsRead)
	require.Equal(t, first.ReadAt.Unix(), second.ReadAt.Unix())
}

func TestMarkReadScopedToRecipient(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	recipient := seedUser(t, db, "recipient-5", "Bob", models.RoleInvestor)
	other := seedUser(t, db, "other-5", "Mallory", models.RoleInvestor)

	svc, err := NewNotificationService(db, realtime.NewHub())
	require.NoError(t, err)

	ctx := context.Background()
	dto, err := svc.Notify(ctx, NotifyInput{
		RecipientID: recipient.ID,
		Type:        models.NotifyDealCreated,
		Message:     "A deal was proposed",
	})
	require.NoError(t, err)

	_, err = svc.MarkRead(ctx, other.ID, dto.ID)
	require.Error(t, err)
}

func TestUnreadCountAndMarkAllRead(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	recipient := seedUser(t, db, "recipient-6", "Bob", models.RoleInvestor)

	svc, err := NewNotificationService(db, realtime.NewHub())
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := svc.Notify(ctx, NotifyInput{
			RecipientID: recipient.ID,
			Type:        models.NotifyNewMessage,
			Message:     "New message from Alice",
		})
		require.NoError(t, err)
	}

	count, err := svc.UnreadCount(ctx, recipient.ID)
	require.NoError(t, err)
	require.EqualValues(t, 3, count)

	require.NoError(t, svc.MarkAllRead(ctx, recipient.ID))

	count, err = svc.UnreadCount(ctx, recipient.ID)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestCleanupReadKeepsUnread(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	recipient := seedUser(t, db, "recipient-7", "Bob", models.RoleInvestor)

	svc, err := NewNotificationService(db, realtime.NewHub())
	require.NoError(t, err)

	ctx := context.Background()
	read, err := svc.Notify(ctx, NotifyInput{
		RecipientID: recipient.ID,
		Type:        models.NotifyNewMessage,
		Message:     "old message",
	})
	require.NoError(t, err)
	_, err = svc.MarkRead(ctx, recipient.ID, read.ID)
	require.NoError(t, err)

	_, err = svc.Notify(ctx, NotifyInput{
		RecipientID: recipient.ID,
		Type:        models.NotifyNewMessage,
		Message:     "never read",
	})
	require.NoError(t, err)

	deleted, err := svc.CleanupRead(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	var remaining int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&remaining).Error)
	require.EqualValues(t, 1, remaining)
}

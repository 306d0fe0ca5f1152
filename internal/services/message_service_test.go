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

func newMessageService(t *testing.T, db *gorm.DB) (*MessageService, *NotificationService) {
	t.Helper()

	notifications, err := NewNotificationService(db, realtime.NewHub())
	require.NoError(t, err)
	requests, err := NewRequestService(db, notifications)
	require.NoError(t, err)
	svc, err := NewMessageService(db, requests, notifications, realtime.NewHub())
	require.NoError(t, err)
	return svc, notifications
}

func TestSendRequiresConnection(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	alice := seedUser(t, db, "alice-m1", "Alice", models.RoleEntrepreneur)
	bob := seedUser(t, db, "bob-m1", "Bob", models.RoleInvestor)

	svc, _ := newMessageService(t, db)

	_, err := svc.Send(context.Background(), alice.ID, bob.ID, "hello")
	require.Error(t, err)
}

func TestSendReusesConversation(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	alice := seedUser(t, db, "alice-m2", "Alice", models.RoleEntrepreneur)
	bob := seedUser(t, db, "bob-m2", "Bob", models.RoleInvestor)
	connectUsers(t, db, alice.ID, bob.ID)

	svc, notifications := newMessageService(t, db)

	ctx := context.Background()
	first, err := svc.Send(ctx, alice.ID, bob.ID, "hello Bob")
	require.NoError(t, err)

	// A reply lands in the same thread regardless of direction.
	second, err := svc.Send(ctx, bob.ID, alice.ID, "hi Alice")
	require.NoError(t, err)
	require.Equal(t, first.ConversationID, second.ConversationID)

	var conversations int64
	require.NoError(t, db.Model(&models.Conversation{}).Count(&conversations).Error)
	require.EqualValues(t, 1, conversations)

	// Each message produced a NEW_MESSAGE notification for its recipient.
	items, err := notifications.ListForUser(ctx, ListNotificationsInput{RecipientID: bob.ID})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, models.NotifyNewMessage, items[0].Type)
	require.Equal(t, first.ID, items[0].Link.ID)
}

func TestListMessagesScopedToParticipants(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	alice := seedUser(t, db, "alice-m3", "Alice", models.RoleEntrepreneur)
	bob := seedUser(t, db, "bob-m3", "Bob", models.RoleInvestor)
	outsider := seedUser(t, db, "carol-m3", "Carol", models.RoleInvestor)
	connectUsers(t, db, alice.ID, bob.ID)

	svc, _ := newMessageService(t, db)

	ctx := context.Background()
	message, err := svc.Send(ctx, alice.ID, bob.ID, "confidential")
	require.NoError(t, err)

	messages, err := svc.ListMessages(ctx, bob.ID, ListMessagesInput{ConversationID: message.ConversationID})
	require.NoError(t, err)
	require.Len(t, messages, 1)

	_, err = svc.ListMessages(ctx, outsider.ID, ListMessagesInput{ConversationID: message.ConversationID})
	require.Error(t, err)
}

func TestMarkConversationRead(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	alice := seedUser(t, db, "alice-m4", "Alice", models.RoleEntrepreneur)
	bob := seedUser(t, db, "bob-m4", "Bob", models.RoleInvestor)
	connectUsers(t, db, alice.ID, bob.ID)

	svc, _ := newMessageService(t, db)

	ctx := context.Background()
	message, err := svc.Send(ctx, alice.ID, bob.ID, "are you there?")
	require.NoError(t, err)

	unread, err := svc.UnreadCount(ctx, bob.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, unread)

	require.NoError(t, svc.MarkConversationRead(ctx, bob.ID, message.ConversationID))

	unread, err = svc.UnreadCount(ctx, bob.ID)
	require.NoError(t, err)
	require.Zero(t, unread)

	// Re-marking is a no-op.
	require.NoError(t, svc.MarkConversationRead(ctx, bob.ID, message.ConversationID))
}

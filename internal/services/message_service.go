package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/venturelink/venturelink/internal/models"
	"github.com/venturelink/venturelink/internal/realtime"
	apperrors "github.com/venturelink/venturelink/pkg/errors"
)

// ListMessagesInput pages through a conversation's history.
type ListMessagesInput struct {
	ConversationID string
	Limit          int
	Offset         int
}

// MessageService manages direct messages between connected users. Messages
// travel over the REST path; the realtime channel only pushes them to the
// recipient's open sessions.
type MessageService struct {
	db            *gorm.DB
	requests      *RequestService
	notifications *NotificationService
	hub           *realtime.Hub
}

// NewMessageService constructs a MessageService.
func NewMessageService(db *gorm.DB, requests *RequestService, notifications *NotificationService, hub *realtime.Hub) (*MessageService, error) {
	if db == nil {
		return nil, errors.New("message service: db is required")
	}
	if requests == nil {
		return nil, errors.New("message service: request service is required")
	}
	if notifications == nil {
		return nil, errors.New("message service: notification service is required")
	}
	return &MessageService{db: db, requests: requests, notifications: notifications, hub: hub}, nil
}

// Send persists a message to the recipient, creating the conversation on
// first contact, then pushes it over the message stream and records a
// notification. Both pushes are best-effort.
func (s *MessageService) Send(ctx context.Context, senderID, recipientID, body string) (*models.Message, error) {
	ctx = ensureContext(ctx)

	recipientID = strings.TrimSpace(recipientID)
	if recipientID == "" {
		return nil, apperrors.NewBadRequest("recipient is required")
	}
	if recipientID == senderID {
		return nil, apperrors.NewBadRequest("you cannot message yourself")
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewBadRequest("message body is required")
	}

	connected, err := s.requests.AreConnected(ctx, senderID, recipientID)
	if err != nil {
		return nil, err
	}
	if !connected {
		return nil, apperrors.New("NOT_CONNECTED", "you can only message your connections", 403)
	}

	conversation, err := s.ensureConversation(ctx, senderID, recipientID)
	if err != nil {
		return nil, err
	}

	message := models.Message{
		ConversationID: conversation.ID,
		SenderID:       senderID,
		RecipientID:    recipientID,
		Body:           body,
	}

	now := time.Now().UTC()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&message).Error; err != nil {
			return fmt.Errorf("create message: %w", err)
		}
		if err := tx.Model(conversation).Update("last_message_at", now).Error; err != nil {
			return fmt.Errorf("touch conversation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("message service: send: %w", err)
	}
	conversation.LastMessageAt = &now

	var sender models.User
	_ = s.db.WithContext(ctx).Select("name").Where("id = ?", senderID).First(&sender).Error

	if s.hub != nil {
		s.hub.EmitToUser(realtime.StreamMessages, recipientID, realtime.Message{
			Event: realtime.EventNewMessage,
			Data:  message,
		})
	}

	s.notifications.NotifyBestEffort(ctx, NotifyInput{
		SenderID:    senderID,
		RecipientID: recipientID,
		Type:        models.NotifyNewMessage,
		Message:     fmt.Sprintf("New message from %s", sender.Name),
		Link:        &Link{Entity: models.LinkEntityMessage, ID: message.ID},
	})

	return &message, nil
}

// ListConversations returns the user's threads, most recently active first.
func (s *MessageService) ListConversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	ctx = ensureContext(ctx)

	var conversations []models.Conversation
	if err := s.db.WithContext(ctx).
		Preload("ParticipantA").Preload("ParticipantB").
		Where("participant_a_id = ? OR participant_b_id = ?", userID, userID).
		Order("last_message_at DESC").
		Find(&conversations).Error; err != nil {
		return nil, fmt.Errorf("message service: list conversations: %w", err)
	}
	return conversations, nil
}

// ListMessages returns a page of the conversation's history, newest first.
// Only participants may read the thread.
func (s *MessageService) ListMessages(ctx context.Context, userID string, input ListMessagesInput) ([]models.Message, error) {
	ctx = ensureContext(ctx)

	conversation, err := s.loadConversation(ctx, input.ConversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.Involves(userID) {
		return nil, apperrors.ErrForbidden
	}

	var messages []models.Message
	if err := s.db.WithContext(ctx).
		Preload("Sender").
		Where("conversation_id = ?", conversation.ID).
		Order("created_at DESC").
		Limit(clampLimit(input.Limit, 50, 200)).
		Offset(clampOffset(input.Offset)).
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("message service: list messages: %w", err)
	}
	return messages, nil
}

// MarkConversationRead stamps every unread message addressed to the user in
// the conversation. Re-marking is a no-op.
func (s *MessageService) MarkConversationRead(ctx context.Context, userID, conversationID string) error {
	ctx = ensureContext(ctx)

	conversation, err := s.loadConversation(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conversation.Involves(userID) {
		return apperrors.ErrForbidden
	}

	if err := s.db.WithContext(ctx).Model(&models.Message{}).
		Where("conversation_id = ? AND recipient_id = ? AND read_at IS NULL", conversation.ID, userID).
		Update("read_at", time.Now().UTC()).Error; err != nil {
		return fmt.Errorf("message service: mark read: %w", err)
	}
	return nil
}

// UnreadCount returns the number of unread messages addressed to the user.
func (s *MessageService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	ctx = ensureContext(ctx)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Message{}).
		Where("recipient_id = ? AND read_at IS NULL", userID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("message service: unread count: %w", err)
	}
	return count, nil
}

func (s *MessageService) loadConversation(ctx context.Context, conversationID string) (*models.Conversation, error) {
	var conversation models.Conversation
	if err := s.db.WithContext(ctx).Where("id = ?", conversationID).First(&conversation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("message service: load conversation: %w", err)
	}
	return &conversation, nil
}

func (s *MessageService) ensureConversation(ctx context.Context, a, b string) (*models.Conversation, error) {
	first, second := models.CanonicalPair(a, b)

	var conversation models.Conversation
	err := s.db.WithContext(ctx).
		Where("participant_a_id = ? AND participant_b_id = ?", first, second).
		First(&conversation).Error
	switch {
	case err == nil:
		return &conversation, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, fmt.Errorf("message service: load conversation: %w", err)
	}

	conversation = models.Conversation{ParticipantAID: first, ParticipantBID: second}
	if err := s.db.WithContext(ctx).Create(&conversation).Error; err != nil {
		// Concurrent first messages race on the pair index; reload the winner.
		var existing models.Conversation
		if lookupErr := s.db.WithContext(ctx).
			Where("participant_a_id = ? AND participant_b_id = ?", first, second).
			First(&existing).Error; lookupErr == nil {
			return &existing, nil
		}
		return nil, fmt.Errorf("message service: create conversation: %w", err)
	}
	return &conversation, nil
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/venturelink/venturelink/internal/models"
	"github.com/venturelink/venturelink/internal/realtime"
	apperrors "github.com/venturelink/venturelink/pkg/errors"
	"github.com/venturelink/venturelink/pkg/logger"
	"github.com/venturelink/venturelink/pkg/metrics"
)

// Link is the tagged entity reference carried by a notification. The entity
// kind is fixed by the notification type; Notify rejects mismatches.
type Link struct {
	Entity string `json:"entity"`
	ID     string `json:"id"`
}

// SenderProjection is the display-safe view of the user who triggered a
// notification, resolved at delivery time for client rendering.
type SenderProjection struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Role   string `json:"role"`
	Online bool   `json:"online"`
}

// NotificationDTO represents the API-friendly notification payload.
type NotificationDTO struct {
	ID          string            `json:"id"`
	RecipientID string            `json:"recipient_id"`
	Sender      *SenderProjection `json:"sender,omitempty"`
	Type        string            `json:"type"`
	Message     string            `json:"message"`
	Link        *Link             `json:"link,omitempty"`
	IsRead      bool              `json:"is_read"`
	CreatedAt   time.Time         `json:"created_at"`
	ReadAt      *time.Time        `json:"read_at,omitempty"`
}

// NotifyInput defines attributes required to record and deliver a notification.
type NotifyInput struct {
	SenderID    string // optional; empty for system-generated events
	RecipientID string
	Type        string
	Message     string
	Link        *Link // optional
}

// ListNotificationsInput defines filters for querying user notifications.
type ListNotificationsInput struct {
	RecipientID string
	Limit       int
	Offset      int
}

// NotificationService durably records events for users and best-effort pushes
// them over the realtime channel. The stored record is the source of truth:
// persistence completes before any delivery attempt, and delivery outcome
// never alters the record.
type NotificationService struct {
	db  *gorm.DB
	hub *realtime.Hub
	log *zap.Logger
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(db *gorm.DB, hub *realtime.Hub) (*NotificationService, error) {
	if db == nil {
		return nil, errors.New("notification service: db is required")
	}
	return &NotificationService{
		db:  db,
		hub: hub,
		log: logger.WithModule("notifications"),
	}, nil
}

// Notify validates the event, persists it with is_read=false, enriches the
// sender projection and attempts realtime delivery to the recipient's room.
func (s *NotificationService) Notify(ctx context.Context, input NotifyInput) (*NotificationDTO, error) {
	ctx = ensureContext(ctx)

	recipientID := strings.TrimSpace(input.RecipientID)
	if recipientID == "" {
		return nil, apperrors.NewBadRequest("recipient is required")
	}
	notificationType := strings.TrimSpace(input.Type)
	if !models.ValidNotificationType(notificationType) {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("unknown notification type %q", input.Type))
	}
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, apperrors.NewBadRequest("message is required")
	}

	notification := models.Notification{
		RecipientID: recipientID,
		Type:        notificationType,
		Message:     message,
	}

	senderID := strings.TrimSpace(input.SenderID)
	if senderID != "" {
		notification.SenderID = &senderID
	}

	if input.Link != nil {
		expected, _ := models.LinkEntityFor(notificationType)
		if input.Link.Entity != expected {
			return nil, apperrors.NewBadRequest(fmt.Sprintf(
				"notification type %s links to a %s, not a %s", notificationType, expected, input.Link.Entity))
		}
		data, err := json.Marshal(input.Link)
		if err != nil {
			return nil, fmt.Errorf("notification service: marshal link: %w", err)
		}
		notification.Link = datatypes.JSON(data)
	}

	// Durability first: the realtime push is an optimization, not the record.
	if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
		return nil, fmt.Errorf("notification service: create notification: %w", err)
	}
	metrics.NotificationsPersisted.WithLabelValues(notificationType).Inc()

	dto := s.toDTO(ctx, notification)
	s.deliver(recipientID, dto)
	return &dto, nil
}

// NotifyBestEffort runs Notify and swallows any failure, logging it instead.
// Domain handlers use this so a notification problem never fails the domain
// action that triggered it.
func (s *NotificationService) NotifyBestEffort(ctx context.Context, input NotifyInput) {
	if _, err := s.Notify(ctx, input); err != nil {
		s.log.Error("notification dropped",
			zap.String("type", input.Type),
			zap.String("recipient_id", input.RecipientID),
			zap.Error(err),
		)
	}
}

// ListForUser returns notifications for the recipient ordered by recency.
func (s *NotificationService) ListForUser(ctx context.Context, input ListNotificationsInput) ([]NotificationDTO, error) {
	ctx = ensureContext(ctx)
	recipientID := strings.TrimSpace(input.RecipientID)
	if recipientID == "" {
		return nil, errors.New("notification service: recipient id is required")
	}

	var rows []models.Notification
	if err := s.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Limit(clampLimit(input.Limit, 25, 100)).
		Offset(clampOffset(input.Offset)).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("notification service: list notifications: %w", err)
	}

	items := make([]NotificationDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, s.toDTO(ctx, row))
	}
	return items, nil
}

// UnreadCount returns the number of unread notifications for the recipient.
func (s *NotificationService) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	ctx = ensureContext(ctx)
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("notification service: unread count: %w", err)
	}
	return count, nil
}

// MarkRead sets the read flag on a notification owned by the recipient.
// Marking an already-read notification again is a no-op, not an error.
func (s *NotificationService) MarkRead(ctx context.Context, recipientID, notificationID string) (*NotificationDTO, error) {
	ctx = ensureContext(ctx)

	var notification models.Notification
	if err := s.db.WithContext(ctx).
		Where("id = ? AND recipient_id = ?", notificationID, recipientID).
		First(&notification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("notification service: load notification: %w", err)
	}

	if !notification.IsRead {
		now := time.Now().UTC()
		if err := s.db.WithContext(ctx).Model(&notification).
			Updates(map[string]any{
				"is_read": true,
				"read_at": now,
			}).Error; err != nil {
			return nil, fmt.Errorf("notification service: mark read: %w", err)
		}
		notification.IsRead = true
		notification.ReadAt = &now
	}

	dto := s.toDTO(ctx, notification)
	return &dto, nil
}

// MarkAllRead marks every unread notification for the recipient as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID string) error {
	ctx = ensureContext(ctx)
	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Updates(map[string]any{
			"is_read": true,
			"read_at": now,
		}).Error; err != nil {
		return fmt.Errorf("notification service: mark all read: %w", err)
	}
	return nil
}

// CleanupRead deletes read notifications older than the cutoff. Used by the
// maintenance cleaner only; normal flow never deletes notifications.
func (s *NotificationService) CleanupRead(ctx context.Context, before time.Time) (int64, error) {
	ctx = ensureContext(ctx)
	result := s.db.WithContext(ctx).
		Where("is_read = ? AND created_at < ?", true, before).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("notification service: cleanup read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// deliver fans the enriched notification out to the recipient's room. The
// delivery count is informational: zero means the user is offline and will
// see the record on their next fetch.
func (s *NotificationService) deliver(recipientID string, dto NotificationDTO) {
	if s.hub == nil {
		return
	}

	delivered := s.hub.EmitToUser(realtime.StreamNotifications, recipientID, realtime.Message{
		Event: realtime.EventNotification,
		Data:  dto,
	})

	if delivered > 0 {
		metrics.NotificationsDelivered.WithLabelValues("delivered").Inc()
		s.log.Debug("notification delivered",
			zap.String("notification_id", dto.ID),
			zap.String("recipient_id", recipientID),
			zap.Int("connections", delivered),
		)
	} else {
		metrics.NotificationsDelivered.WithLabelValues("offline").Inc()
		s.log.Debug("recipient offline, notification saved for later",
			zap.String("notification_id", dto.ID),
			zap.String("recipient_id", recipientID),
		)
	}
}

func (s *NotificationService) toDTO(ctx context.Context, row models.Notification) NotificationDTO {
	dto := NotificationDTO{
		ID:          row.ID,
		RecipientID: row.RecipientID,
		Type:        row.Type,
		Message:     row.Message,
		IsRead:      row.IsRead,
		CreatedAt:   row.CreatedAt,
		ReadAt:      row.ReadAt,
	}

	if len(row.Link) > 0 {
		var link Link
		if err := json.Unmarshal(row.Link, &link); err == nil {
			dto.Link = &link
		}
	}

	if row.SenderID != nil {
		dto.Sender = s.senderProjection(ctx, *row.SenderID)
	}

	return dto
}

// senderProjection resolves the sender reference to a display-safe view. The
// recipient is never enriched; they are the viewer.
func (s *NotificationService) senderProjection(ctx context.Context, senderID string) *SenderProjection {
	var sender models.User
	if err := s.db.WithContext(ctx).Select("id", "name", "avatar", "role").
		Where("id = ?", senderID).First(&sender).Error; err != nil {
		return &SenderProjection{ID: senderID}
	}

	online := false
	if s.hub != nil {
		online = s.hub.IsOnline(senderID)
	}

	return &SenderProjection{
		ID:     sender.ID,
		Name:   sender.Name,
		Avatar: sender.Avatar,
		Role:   sender.Role,
		Online: online,
	}
}

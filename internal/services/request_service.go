package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/venturelink/venturelink/internal/models"
	apperrors "github.com/venturelink/venturelink/pkg/errors"
)

// RequestService manages connection requests between users. An accepted
// request is the connection.
type RequestService struct {
	db            *gorm.DB
	notifications *NotificationService
}

// NewRequestService constructs a RequestService.
func NewRequestService(db *gorm.DB, notifications *NotificationService) (*RequestService, error) {
	if db == nil {
		return nil, errors.New("request service: db is required")
	}
	if notifications == nil {
		return nil, errors.New("request service: notification service is required")
	}
	return &RequestService{db: db, notifications: notifications}, nil
}

// Send creates a pending connection request and notifies the recipient.
func (s *RequestService) Send(ctx context.Context, senderID, recipientID, note string) (*models.ConnectionRequest, error) {
	ctx = ensureContext(ctx)

	recipientID = strings.TrimSpace(recipientID)
	if recipientID == "" {
		return nil, apperrors.NewBadRequest("recipient is required")
	}
	if recipientID == senderID {
		return nil, apperrors.NewBadRequest("you cannot connect with yourself")
	}

	var sender models.User
	if err := s.db.WithContext(ctx).Where("id = ?", senderID).First(&sender).Error; err != nil {
		return nil, fmt.Errorf("request service: load sender: %w", err)
	}

	var recipient models.User
	if err := s.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", recipientID, true).
		First(&recipient).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("request service: load recipient: %w", err)
	}

	var existing int64
	if err := s.pairQuery(ctx, senderID, recipientID).
		Where("status IN ?", []string{models.RequestPending, models.RequestAccepted}).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("request service: check existing: %w", err)
	}
	if existing > 0 {
		return nil, apperrors.NewConflict("a request between these users already exists")
	}

	request := models.ConnectionRequest{
		SenderID:    senderID,
		RecipientID: recipientID,
		Note:        strings.TrimSpace(note),
		Status:      models.RequestPending,
	}
	if err := s.db.WithContext(ctx).Create(&request).Error; err != nil {
		return nil, fmt.Errorf("request service: create request: %w", err)
	}

	s.notifications.NotifyBestEffort(ctx, NotifyInput{
		SenderID:    senderID,
		RecipientID: recipientID,
		Type:        models.NotifyConnectionRequest,
		Message:     fmt.Sprintf("%s sent you a connection request", sender.Name),
		Link:        &Link{Entity: models.LinkEntityRequest, ID: request.ID},
	})

	return &request, nil
}

// Accept marks a pending request accepted and notifies the original sender.
func (s *RequestService) Accept(ctx context.Context, userID, requestID string) (*models.ConnectionRequest, error) {
	return s.respond(ctx, userID, requestID, models.RequestAccepted)
}

// Decline marks a pending request declined. The sender is not notified.
func (s *RequestService) Decline(ctx context.Context, userID, requestID string) (*models.ConnectionRequest, error) {
	return s.respond(ctx, userID, requestID, models.RequestDeclined)
}

func (s *RequestService) respond(ctx context.Context, userID, requestID, status string) (*models.ConnectionRequest, error) {
	ctx = ensureContext(ctx)

	var request models.ConnectionRequest
	if err := s.db.WithContext(ctx).Preload("Recipient").
		Where("id = ?", requestID).First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("request service: load request: %w", err)
	}

	// Only the recipient may respond.
	if request.RecipientID != userID {
		return nil, apperrors.ErrForbidden
	}
	if request.Status != models.RequestPending {
		return nil, apperrors.NewConflict("request has already been responded to")
	}

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(&request).
		Updates(map[string]any{
			"status":       status,
			"responded_at": now,
		}).Error; err != nil {
		return nil, fmt.Errorf("request service: update request: %w", err)
	}
	request.Status = status
	request.RespondedAt = &now

	if status == models.RequestAccepted {
		name := ""
		if request.Recipient != nil {
			name = request.Recipient.Name
		}
		s.notifications.NotifyBestEffort(ctx, NotifyInput{
			SenderID:    userID,
			RecipientID: request.SenderID,
			Type:        models.NotifyRequestAccepted,
			Message:     fmt.Sprintf("%s accepted your connection request", name),
			Link:        &Link{Entity: models.LinkEntityRequest, ID: request.ID},
		})
	}

	return &request, nil
}

// ListIncoming returns requests addressed to the user, newest first.
func (s *RequestService) ListIncoming(ctx context.Context, userID string) ([]models.ConnectionRequest, error) {
	return s.list(ctx, "recipient_id = ?", userID, "Sender")
}

// ListOutgoing returns requests the user has sent, newest first.
func (s *RequestService) ListOutgoing(ctx context.Context, userID string) ([]models.ConnectionRequest, error) {
	return s.list(ctx, "sender_id = ?", userID, "Recipient")
}

func (s *RequestService) list(ctx context.Context, where, userID, preload string) ([]models.ConnectionRequest, error) {
	ctx = ensureContext(ctx)
	var requests []models.ConnectionRequest
	if err := s.db.WithContext(ctx).Preload(preload).
		Where(where, userID).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("request service: list requests: %w", err)
	}
	return requests, nil
}

// Connections returns the accepted requests involving the user, with both
// parties preloaded so callers can project the counterparty.
func (s *RequestService) Connections(ctx context.Context, userID string) ([]models.ConnectionRequest, error) {
	ctx = ensureContext(ctx)
	var requests []models.ConnectionRequest
	if err := s.db.WithContext(ctx).Preload("Sender").Preload("Recipient").
		Where("status = ?", models.RequestAccepted).
		Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Order("responded_at DESC").
		Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("request service: list connections: %w", err)
	}
	return requests, nil
}

// AreConnected reports whether an accepted request links the two users.
func (s *RequestService) AreConnected(ctx context.Context, a, b string) (bool, error) {
	ctx = ensureContext(ctx)
	var count int64
	if err := s.pairQuery(ctx, a, b).
		Where("status = ?", models.RequestAccepted).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("request service: check connection: %w", err)
	}
	return count > 0, nil
}

func (s *RequestService) pairQuery(ctx context.Context, a, b string) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.ConnectionRequest{}).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)", a, b, b, a)
}

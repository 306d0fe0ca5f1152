package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/venturelink/venturelink/internal/models"
	apperrors "github.com/venturelink/venturelink/pkg/errors"
	"github.com/venturelink/venturelink/pkg/logger"
	"github.com/venturelink/venturelink/pkg/mail"
)

// ScheduleMeetingInput defines the attributes of a new meeting.
type ScheduleMeetingInput struct {
	AttendeeID      string
	Title           string
	Agenda          string
	ScheduledAt     time.Time
	DurationMinutes int
	Location        string
}

// MeetingService manages meetings between connected users.
type MeetingService struct {
	db            *gorm.DB
	requests      *RequestService
	notifications *NotificationService
	mailer        mail.Mailer
	log           *zap.Logger
}

// NewMeetingService constructs a MeetingService. The mailer may be nil when
// email delivery is disabled.
func NewMeetingService(db *gorm.DB, requests *RequestService, notifications *NotificationService, mailer mail.Mailer) (*MeetingService, error) {
	if db == nil {
		return nil, errors.New("meeting service: db is required")
	}
	if requests == nil {
		return nil, errors.New("meeting service: request service is required")
	}
	if notifications == nil {
		return nil, errors.New("meeting service: notification service is required")
	}
	return &MeetingService{
		db:            db,
		requests:      requests,
		notifications: notifications,
		mailer:        mailer,
		log:           logger.WithModule("meetings"),
	}, nil
}

// Schedule books a meeting with a connected counterparty and notifies them.
// The invite email is best-effort, same as the notification.
func (s *MeetingService) Schedule(ctx context.Context, organizerID string, input ScheduleMeetingInput) (*models.Meeting, error) {
	ctx = ensureContext(ctx)

	attendeeID := strings.TrimSpace(input.AttendeeID)
	if attendeeID == "" {
		return nil, apperrors.NewBadRequest("attendee is required")
	}
	if attendeeID == organizerID {
		return nil, apperrors.NewBadRequest("you cannot schedule a meeting with yourself")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewBadRequest("title is required")
	}
	if input.ScheduledAt.IsZero() || input.ScheduledAt.Before(time.Now()) {
		return nil, apperrors.NewBadRequest("scheduled time must be in the future")
	}

	connected, err := s.requests.AreConnected(ctx, organizerID, attendeeID)
	if err != nil {
		return nil, err
	}
	if !connected {
		return nil, apperrors.New("NOT_CONNECTED", "you can only schedule meetings with your connections", 403)
	}

	var organizer, attendee models.User
	if err := s.db.WithContext(ctx).Where("id = ?", organizerID).First(&organizer).Error; err != nil {
		return nil, fmt.Errorf("meeting service: load organizer: %w", err)
	}
	if err := s.db.WithContext(ctx).Where("id = ?", attendeeID).First(&attendee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("meeting service: load attendee: %w", err)
	}

	duration := input.DurationMinutes
	if duration <= 0 {
		duration = 30
	}

	meeting := models.Meeting{
		OrganizerID:     organizerID,
		AttendeeID:      attendeeID,
		Title:           title,
		Agenda:          strings.TrimSpace(input.Agenda),
		ScheduledAt:     input.ScheduledAt.UTC(),
		DurationMinutes: duration,
		Location:        strings.TrimSpace(input.Location),
		Status:          models.MeetingScheduled,
	}
	if err := s.db.WithContext(ctx).Create(&meeting).Error; err != nil {
		return nil, fmt.Errorf("meeting service: create meeting: %w", err)
	}

	s.notifications.NotifyBestEffort(ctx, NotifyInput{
		SenderID:    organizerID,
		RecipientID: attendeeID,
		Type:        models.NotifyMeetingScheduled,
		Message:     fmt.Sprintf("%s scheduled a meeting: %s", organizer.Name, meeting.Title),
		Link:        &Link{Entity: models.LinkEntityMeeting, ID: meeting.ID},
	})

	s.sendInvite(ctx, &meeting, &organizer, &attendee)

	return &meeting, nil
}

// List returns meetings the user organizes or attends, soonest first.
func (s *MeetingService) List(ctx context.Context, userID string) ([]models.Meeting, error) {
	ctx = ensureContext(ctx)

	var meetings []models.Meeting
	if err := s.db.WithContext(ctx).
		Preload("Organizer").Preload("Attendee").
		Where("organizer_id = ? OR attendee_id = ?", userID, userID).
		Order("scheduled_at ASC").
		Find(&meetings).Error; err != nil {
		return nil, fmt.Errorf("meeting service: list meetings: %w", err)
	}
	return meetings, nil
}

// UpdateStatus lets either participant confirm or cancel the meeting.
func (s *MeetingService) UpdateStatus(ctx context.Context, userID, meetingID, status string) (*models.Meeting, error) {
	ctx = ensureContext(ctx)

	status = strings.ToLower(strings.TrimSpace(status))
	if !models.ValidMeetingStatus(status) {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("unknown meeting status %q", status))
	}

	var meeting models.Meeting
	if err := s.db.WithContext(ctx).Where("id = ?", meetingID).First(&meeting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("meeting service: load meeting: %w", err)
	}

	if meeting.OrganizerID != userID && meeting.AttendeeID != userID {
		return nil, apperrors.ErrForbidden
	}

	if meeting.Status != status {
		if err := s.db.WithContext(ctx).Model(&meeting).Update("status", status).Error; err != nil {
			return nil, fmt.Errorf("meeting service: update status: %w", err)
		}
		meeting.Status = status
	}

	return &meeting, nil
}

func (s *MeetingService) sendInvite(ctx context.Context, meeting *models.Meeting, organizer, attendee *models.User) {
	if s.mailer == nil {
		return
	}

	err := s.mailer.Send(ctx, mail.Message{
		To:      []string{attendee.Email},
		Subject: fmt.Sprintf("Meeting invitation: %s", meeting.Title),
		Body: fmt.Sprintf("%s invited you to %q on %s (%d minutes).\n\n%s",
			organizer.Name, meeting.Title,
			meeting.ScheduledAt.Format(time.RFC1123),
			meeting.DurationMinutes, meeting.Agenda),
	})
	if err != nil && !errors.Is(err, mail.ErrSMTPDisabled) {
		s.log.Warn("meeting invite email failed",
			zap.String("meeting_id", meeting.ID),
			zap.Error(err),
		)
	}
}

package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/venturelink/venturelink/internal/middleware"
	"github.com/venturelink/venturelink/internal/services"
	appErrors "github.com/venturelink/venturelink/pkg/errors"
	"github.com/venturelink/venturelink/pkg/response"
)

// MeetingHandler exposes meeting scheduling endpoints.
type MeetingHandler struct {
	meetings *services.MeetingService
}

// NewMeetingHandler constructs a meeting handler.
func NewMeetingHandler(meetings *services.MeetingService) *MeetingHandler {
	return &MeetingHandler{meetings: meetings}
}

type scheduleMeetingRequest struct {
	AttendeeID      string    `json:"attendee_id" validate:"required"`
	Title           string    `json:"title" validate:"required,min=3,max=200"`
	Agenda          string    `json:"agenda" validate:"max=5000"`
	ScheduledAt     time.Time `json:"scheduled_at" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"min=0,max=480"`
	Location        string    `json:"location" validate:"max=500"`
}

type updateMeetingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=scheduled confirmed cancelled"`
}

// Schedule books a meeting with a connected counterparty.
func (h *MeetingHandler) Schedule(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req scheduleMeetingRequest
	if !bindAndValidate(c, &req) {
		return
	}

	meeting, err := h.meetings.Schedule(requestContext(c), userID, services.ScheduleMeetingInput{
		AttendeeID:      req.AttendeeID,
		Title:           req.Title,
		Agenda:          req.Agenda,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		Location:        req.Location,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, meeting)
}

// List returns the caller's meetings.
func (h *MeetingHandler) List(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	meetings, err := h.meetings.List(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, meetings)
}

// UpdateStatus confirms or cancels a meeting.
func (h *MeetingHandler) UpdateStatus(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req updateMeetingStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}

	meeting, err := h.meetings.UpdateStatus(requestContext(c), userID, strings.TrimSpace(c.Param("id")), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, meeting)
}

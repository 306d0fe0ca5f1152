package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/venturelink/venturelink/internal/middleware"
	"github.com/venturelink/venturelink/internal/models"
	"github.com/venturelink/venturelink/internal/services"
	appErrors "github.com/venturelink/venturelink/pkg/errors"
	"github.com/venturelink/venturelink/pkg/response"
)

// RequestHandler exposes connection request endpoints.
type RequestHandler struct {
	requests *services.RequestService
}

// NewRequestHandler constructs a request handler.
func NewRequestHandler(requests *services.RequestService) *RequestHandler {
	return &RequestHandler{requests: requests}
}

type sendRequestRequest struct {
	RecipientID string `json:"recipient_id" validate:"required"`
	Note        string `json:"note" validate:"max=500"`
}

// Send creates a pending connection request.
func (h *RequestHandler) Send(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req sendRequestRequest
	if !bindAndValidate(c, &req) {
		return
	}

	request, err := h.requests.Send(requestContext(c), userID, req.RecipientID, req.Note)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, request)
}

// Accept marks the request accepted.
func (h *RequestHandler) Accept(c *gin.Context) {
	h.respond(c, true)
}

// Decline marks the request declined.
func (h *RequestHandler) Decline(c *gin.Context) {
	h.respond(c, false)
}

func (h *RequestHandler) respond(c *gin.Context, accept bool) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	var err error
	var request any
	if accept {
		request, err = h.requests.Accept(requestContext(c), userID, id)
	} else {
		request, err = h.requests.Decline(requestContext(c), userID, id)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, request)
}

// ListIncoming returns requests addressed to the caller.
func (h *RequestHandler) ListIncoming(c *gin.Context) {
	h.list(c, h.requests.ListIncoming)
}

// ListOutgoing returns requests sent by the caller.
func (h *RequestHandler) ListOutgoing(c *gin.Context) {
	h.list(c, h.requests.ListOutgoing)
}

// Connections returns the caller's accepted connections.
func (h *RequestHandler) Connections(c *gin.Context) {
	h.list(c, h.requests.Connections)
}

func (h *RequestHandler) list(c *gin.Context, fn func(ctx context.Context, userID string) ([]models.ConnectionRequest, error)) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	items, err := fn(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/venturelink/venturelink/internal/middleware"
	"github.com/venturelink/venturelink/internal/services"
	appErrors "github.com/venturelink/venturelink/pkg/errors"
	"github.com/venturelink/venturelink/pkg/response"
)

// MessageHandler exposes direct messaging endpoints.
type MessageHandler struct {
	messages *services.MessageService
}

// NewMessageHandler constructs a message handler.
func NewMessageHandler(messages *services.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

type sendMessageRequest struct {
	RecipientID string `json:"recipient_id" validate:"required"`
	Body        string `json:"body" validate:"required,max=10000"`
}

// Send delivers a message to a connected user.
func (h *MessageHandler) Send(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req sendMessageRequest
	if !bindAndValidate(c, &req) {
		return
	}

	message, err := h.messages.Send(requestContext(c), userID, req.RecipientID, req.Body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, message)
}

// ListConversations returns the caller's threads.
func (h *MessageHandler) ListConversations(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	conversations, err := h.messages.ListConversations(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, conversations)
}

// ListMessages pages through a conversation's history.
func (h *MessageHandler) ListMessages(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	messages, err := h.messages.ListMessages(requestContext(c), userID, services.ListMessagesInput{
		ConversationID: strings.TrimSpace(c.Param("id")),
		Limit:          parseIntQuery(c, "limit", 50),
		Offset:         parseIntQuery(c, "offset", 0),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, messages)
}

// MarkRead stamps every unread message addressed to the caller in the thread.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.messages.MarkConversationRead(requestContext(c), userID, strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"read": true})
}

// UnreadCount returns the caller's unread message total.
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	count, err := h.messages.UnreadCount(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"unread": count})
}

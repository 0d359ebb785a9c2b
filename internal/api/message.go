package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/relay/internal/access"
	"github.com/lalith-99/relay/internal/chat"
	"github.com/lalith-99/relay/internal/middleware"
	"go.uber.org/zap"
)

// MessageHandler is the REST surface over the chat gateway. Messages live
// in the live store, not Postgres — every operation here goes through the
// gateway, and reads come back reconciled and grouped, ready to render.
type MessageHandler struct {
	gateway *chat.Gateway
	access  *access.Checker
	logger  *zap.Logger
}

func NewMessageHandler(gateway *chat.Gateway, access *access.Checker, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{gateway: gateway, access: access, logger: logger}
}

// authorize resolves the channel id from the route and checks access.
// Returns "" after writing the error response when the caller may not
// proceed.
func (h *MessageHandler) authorize(c *gin.Context) string {
	channelID := c.Param("id")
	userID := middleware.GetUserID(c)

	ok, err := h.access.CanAccess(c.Request.Context(), channelID, userID)
	if err != nil {
		h.logger.Error("failed to check channel access", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check channel access"})
		return ""
	}
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member of this channel"})
		return ""
	}
	return channelID
}

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// Send handles POST /v1/channels/:id/messages
func (h *MessageHandler) Send(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	channelID := h.authorize(c)
	if channelID == "" {
		return
	}

	draft := chat.Draft{
		UserID:    middleware.GetUserID(c).String(),
		AccountID: middleware.GetTenantID(c).String(),
		Content:   req.Content,
	}
	if a, b, ok := chat.DMParticipants(channelID); ok {
		draft.Participants = []string{a, b}
	}

	msg, err := h.gateway.Send(c.Request.Context(), channelID, draft)
	if errors.Is(err, chat.ErrEmptyMessage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message content is empty"})
		return
	}
	if err != nil {
		h.logger.Error("failed to send message", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// List handles GET /v1/channels/:id/messages
//
// Returns the grouped view — date buckets of author bursts — the same
// structure the websocket pushes, so a client can render either source
// identically.
func (h *MessageHandler) List(c *gin.Context) {
	channelID := h.authorize(c)
	if channelID == "" {
		return
	}

	msgs, err := h.gateway.Fetch(c.Request.Context(), channelID)
	if err != nil {
		h.logger.Error("failed to fetch messages", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch messages"})
		return
	}

	groups := chat.GroupMessages(chat.Reconcile(msgs), time.Local)
	c.JSON(http.StatusOK, gin.H{"days": groups})
}

type editMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// Edit handles PATCH /v1/channels/:id/messages/:messageID
func (h *MessageHandler) Edit(c *gin.Context) {
	var req editMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	channelID := h.authorize(c)
	if channelID == "" {
		return
	}

	err := h.gateway.Edit(c.Request.Context(), channelID, c.Param("messageID"), req.Content)
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "message content is empty"})
	case errors.Is(err, chat.ErrMessageNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
	case err != nil:
		h.logger.Error("failed to edit message", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to edit message"})
	default:
		c.Status(http.StatusNoContent)
	}
}

// Delete handles DELETE /v1/channels/:id/messages/:messageID
//
// Deletion tombstones the message in the store; subscribers see the
// cleared slot and drop it from their views.
func (h *MessageHandler) Delete(c *gin.Context) {
	channelID := h.authorize(c)
	if channelID == "" {
		return
	}

	err := h.gateway.Delete(c.Request.Context(), channelID, c.Param("messageID"))
	switch {
	case errors.Is(err, chat.ErrMessageNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
	case err != nil:
		h.logger.Error("failed to delete message", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete message"})
	default:
		c.Status(http.StatusNoContent)
	}
}

// ToggleReaction handles PUT /v1/channels/:id/messages/:messageID/reactions/:emoji
//
// One endpoint for add and remove: the toggle is idempotent per state, so
// the client never needs to know whether its reaction is currently applied.
func (h *MessageHandler) ToggleReaction(c *gin.Context) {
	channelID := h.authorize(c)
	if channelID == "" {
		return
	}

	userID := middleware.GetUserID(c)
	err := h.gateway.ToggleReaction(c.Request.Context(), channelID, c.Param("messageID"), c.Param("emoji"), userID.String())
	switch {
	case errors.Is(err, chat.ErrMessageNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
	case err != nil:
		h.logger.Error("failed to toggle reaction", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to toggle reaction"})
	default:
		c.Status(http.StatusNoContent)
	}
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/relay/internal/chat"
	"github.com/lalith-99/relay/internal/middleware"
	"github.com/lalith-99/relay/internal/repository"
	"go.uber.org/zap"
)

// ChannelHandler holds the dependencies needed to handle channel requests.
//
// The handler takes repository interfaces, not concrete stores — in tests
// you can pass a mock implementation, no DB needed.
type ChannelHandler struct {
	repo    repository.ChannelRepository
	members repository.MembershipRepository
	users   repository.UserRepository
	logger  *zap.Logger
}

func NewChannelHandler(
	repo repository.ChannelRepository,
	members repository.MembershipRepository,
	users repository.UserRepository,
	logger *zap.Logger,
) *ChannelHandler {
	return &ChannelHandler{repo: repo, members: members, users: users, logger: logger}
}

// createChannelRequest is the expected JSON body for POST /v1/channels.
//
// A separate request struct, not models.Channel: the client must never
// control id, tenant_id, or created_at.
type createChannelRequest struct {
	Name      string `json:"name" binding:"required"`
	IsPrivate bool   `json:"is_private"`
}

// Create handles POST /v1/channels. The creator is auto-joined as admin —
// a channel with zero members would be unreachable by everyone, including
// the person who made it.
func (h *ChannelHandler) Create(c *gin.Context) {
	var req createChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tenantID := middleware.GetTenantID(c)
	userID := middleware.GetUserID(c)

	ch, err := h.repo.Create(c.Request.Context(), tenantID, req.Name, req.IsPrivate)
	if err != nil {
		h.logger.Error("failed to create channel", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create channel"})
		return
	}

	if err := h.members.AddMember(c.Request.Context(), ch.ID, userID, "admin"); err != nil {
		h.logger.Error("failed to add creator to channel", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create channel"})
		return
	}

	c.JSON(http.StatusCreated, ch)
}

// List handles GET /v1/channels
func (h *ChannelHandler) List(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	channels, err := h.repo.ListByTenant(c.Request.Context(), tenantID)
	if err != nil {
		h.logger.Error("failed to list channels", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list channels"})
		return
	}

	c.JSON(http.StatusOK, channels)
}

// GetByID handles GET /v1/channels/:id
func (h *ChannelHandler) GetByID(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	channelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel id"})
		return
	}

	ch, err := h.repo.GetByID(c.Request.Context(), tenantID, channelID)
	if err != nil {
		h.logger.Error("failed to get channel", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get channel"})
		return
	}

	if ch == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "channel not found"})
		return
	}

	c.JSON(http.StatusOK, ch)
}

// ResolveDM handles POST /v1/dms/:userID
//
// DM channels are never allocated: both participants derive the same
// canonical id locally (sorted pair of user ids), so "opening" a DM is
// just computing that id. We verify the other user exists in the caller's
// tenant before handing the id back.
func (h *ChannelHandler) ResolveDM(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	me := middleware.GetUserID(c)

	otherID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	other, err := h.users.GetByID(c.Request.Context(), tenantID, otherID)
	if err != nil {
		h.logger.Error("failed to get user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve dm"})
		return
	}
	if other == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"channel_id":   chat.DMChannelID(me.String(), otherID.String()),
		"participants": []string{me.String(), otherID.String()},
	})
}

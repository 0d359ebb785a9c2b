package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/relay/internal/middleware"
	"github.com/lalith-99/relay/internal/repository"
	"go.uber.org/zap"
)

// MembershipHandler handles channel membership operations.
// Only named channels have membership rows — DM channel access is encoded
// in the channel id itself and never touches this handler.
type MembershipHandler struct {
	repo   repository.MembershipRepository
	logger *zap.Logger
}

func NewMembershipHandler(repo repository.MembershipRepository, logger *zap.Logger) *MembershipHandler {
	return &MembershipHandler{repo: repo, logger: logger}
}

// joinChannelRequest is the JSON body for POST /v1/channels/:id/join
//
// Role defaults to "member" if not provided.
type joinChannelRequest struct {
	Role string `json:"role"`
}

// Join handles POST /v1/channels/:id/join
//
// "Join" is a user action on themselves — distinct from an admin adding
// someone else, which would be a different endpoint. Joining twice is a
// no-op (the insert is idempotent).
func (h *MembershipHandler) Join(c *gin.Context) {
	channelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel id"})
		return
	}

	userID := middleware.GetUserID(c)

	// The body is optional — missing or malformed means default role.
	var req joinChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req.Role = "member"
	}
	if req.Role == "" {
		req.Role = "member"
	}

	err = h.repo.AddMember(c.Request.Context(), channelID, userID, req.Role)
	if err != nil {
		h.logger.Error("failed to join channel", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join channel"})
		return
	}

	c.Status(http.StatusNoContent)
}

// Leave handles POST /v1/channels/:id/leave
func (h *MembershipHandler) Leave(c *gin.Context) {
	channelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel id"})
		return
	}

	userID := middleware.GetUserID(c)

	err = h.repo.RemoveMember(c.Request.Context(), channelID, userID)
	if err != nil {
		h.logger.Error("failed to leave channel", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to leave channel"})
		return
	}

	c.Status(http.StatusNoContent)
}

// ListMembers handles GET /v1/channels/:id/members
func (h *MembershipHandler) ListMembers(c *gin.Context) {
	channelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel id"})
		return
	}

	members, err := h.repo.ListMembers(c.Request.Context(), channelID)
	if err != nil {
		h.logger.Error("failed to list members", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list members"})
		return
	}

	c.JSON(http.StatusOK, members)
}

package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/relay/internal/auth"
	"github.com/lalith-99/relay/internal/middleware"
	"github.com/lalith-99/relay/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler handles signup, login, and the invitation flow.
// Signup/login and invite redemption are the only PUBLIC endpoints —
// the caller doesn't have a JWT yet, that's what these produce.
type AuthHandler struct {
	userRepo   repository.UserRepository
	tenantRepo repository.TenantRepository
	inviteRepo repository.InviteRepository
	jwtSecret  string
	logger     *zap.Logger
}

func NewAuthHandler(
	userRepo repository.UserRepository,
	tenantRepo repository.TenantRepository,
	inviteRepo repository.InviteRepository,
	jwtSecret string,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		userRepo:   userRepo,
		tenantRepo: tenantRepo,
		inviteRepo: inviteRepo,
		jwtSecret:  jwtSecret,
		logger:     logger,
	}
}

type signupRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name" binding:"required"`
	TenantName  string `json:"tenant_name" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// authResponse is what signup, login, and invite acceptance return.
// The client stores this token and sends it as "Authorization: Bearer <token>"
// on every subsequent request.
type authResponse struct {
	Token string `json:"token"`
}

// Signup handles POST /v1/auth/signup — creates a fresh tenant with its
// first user.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := h.userRepo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.logger.Error("failed to check existing user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "signup failed"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	}

	// bcrypt generates a unique salt per password automatically; the
	// default cost keeps hashing slow enough to blunt brute force.
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("failed to hash password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "signup failed"})
		return
	}

	// Tenant first — the user row references it.
	tenant, err := h.tenantRepo.Create(c.Request.Context(), req.TenantName)
	if err != nil {
		h.logger.Error("failed to create tenant", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "signup failed"})
		return
	}

	user, err := h.userRepo.Create(
		c.Request.Context(),
		tenant.ID,
		req.Email,
		req.DisplayName,
		string(hash),
	)
	if err != nil {
		h.logger.Error("failed to create user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "signup failed"})
		return
	}

	token, err := auth.GenerateToken(user.ID, tenant.ID, user.Email, h.jwtSecret, 24*time.Hour)
	if err != nil {
		h.logger.Error("failed to generate token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "signup failed"})
		return
	}

	c.JSON(http.StatusCreated, authResponse{Token: token})
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userRepo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.logger.Error("failed to find user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	// Same error for "user not found" and "wrong password" — a split
	// response would tell an attacker which emails are registered.
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	token, err := auth.GenerateToken(user.ID, user.TenantID, user.Email, h.jwtSecret, 24*time.Hour)
	if err != nil {
		h.logger.Error("failed to generate token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	c.JSON(http.StatusOK, authResponse{Token: token})
}

type createInviteRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role"`
}

// CreateInvite handles POST /v1/invites (authenticated).
//
// The invitation is recorded and returned with its token; getting that
// token to the invitee (email, link sharing) happens outside this service.
func (h *AuthHandler) CreateInvite(c *gin.Context) {
	var req createInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Role == "" {
		req.Role = "member"
	}

	tenantID := middleware.GetTenantID(c)
	userID := middleware.GetUserID(c)

	inv, err := h.inviteRepo.Create(
		c.Request.Context(),
		tenantID,
		req.Email,
		req.Role,
		uuid.NewString(),
		userID,
	)
	if err != nil {
		h.logger.Error("failed to create invitation", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create invitation"})
		return
	}

	c.JSON(http.StatusCreated, inv)
}

// GetInvite handles GET /v1/auth/invites/:token (public).
//
// The invitee's client calls this to show "you've been invited to X"
// before the account exists.
func (h *AuthHandler) GetInvite(c *gin.Context) {
	inv, err := h.inviteRepo.GetByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.logger.Error("failed to get invitation", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get invitation"})
		return
	}
	if inv == nil || inv.Accepted() || inv.Expired(time.Now()) {
		c.JSON(http.StatusNotFound, gin.H{"error": "invitation not found"})
		return
	}

	c.JSON(http.StatusOK, inv)
}

type acceptInviteRequest struct {
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name" binding:"required"`
}

// AcceptInvite handles POST /v1/auth/invites/:token/accept (public).
// Creates the user in the inviting tenant and logs them in.
func (h *AuthHandler) AcceptInvite(c *gin.Context) {
	var req acceptInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inv, err := h.inviteRepo.GetByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.logger.Error("failed to get invitation", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to accept invitation"})
		return
	}
	if inv == nil || inv.Accepted() || inv.Expired(time.Now()) {
		c.JSON(http.StatusNotFound, gin.H{"error": "invitation not found"})
		return
	}

	existing, err := h.userRepo.GetByEmail(c.Request.Context(), inv.Email)
	if err != nil {
		h.logger.Error("failed to check existing user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to accept invitation"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("failed to hash password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to accept invitation"})
		return
	}

	user, err := h.userRepo.Create(
		c.Request.Context(),
		inv.TenantID,
		inv.Email,
		req.DisplayName,
		string(hash),
	)
	if err != nil {
		h.logger.Error("failed to create user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to accept invitation"})
		return
	}

	if err := h.inviteRepo.MarkAccepted(c.Request.Context(), inv.ID); err != nil {
		h.logger.Error("failed to mark invitation accepted", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to accept invitation"})
		return
	}

	token, err := auth.GenerateToken(user.ID, inv.TenantID, user.Email, h.jwtSecret, 24*time.Hour)
	if err != nil {
		h.logger.Error("failed to generate token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to accept invitation"})
		return
	}

	c.JSON(http.StatusCreated, authResponse{Token: token})
}

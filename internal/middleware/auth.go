package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/relay/internal/auth"
)

// Context keys for claims stored in gin.Context. Constants rather than
// inline strings: a typo in c.Get("usr_id") compiles fine and silently
// returns nil, a typo in a constant doesn't compile.
const (
	ContextKeyUserID   = "user_id"
	ContextKeyTenantID = "tenant_id"
	ContextKeyEmail    = "email"
)

// AuthMiddleware validates the Bearer JWT on every request in its group.
// Invalid or missing tokens abort the chain with a 401 — the handler
// never runs. Valid claims land in the gin context for the helpers below.
//
// The secret comes in as a parameter so the middleware never imports the
// config package, and tests can pass any secret they like.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing authorization header",
			})
			return
		}

		// Expected format: "Bearer eyJhbGciOi..."
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid authorization format, expected: Bearer <token>",
			})
			return
		}

		claims, err := auth.ParseToken(parts[1], secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyTenantID, claims.TenantID)
		c.Set(ContextKeyEmail, claims.Email)

		c.Next()
	}
}

// Typed helpers so handlers don't repeat the c.Get + type-assert dance.
// A missing key yields uuid.Nil / "" — safe zero values that fail any
// downstream query gracefully.

func GetUserID(c *gin.Context) uuid.UUID {
	val, exists := c.Get(ContextKeyUserID)
	if !exists {
		return uuid.Nil
	}
	id, ok := val.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}

func GetTenantID(c *gin.Context) uuid.UUID {
	val, exists := c.Get(ContextKeyTenantID)
	if !exists {
		return uuid.Nil
	}
	id, ok := val.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}

func GetEmail(c *gin.Context) string {
	val, exists := c.Get(ContextKeyEmail)
	if !exists {
		return ""
	}
	email, ok := val.(string)
	if !ok {
		return ""
	}
	return email
}

package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/lalith-99/relay/internal/access"
	"github.com/lalith-99/relay/internal/auth"
	"github.com/lalith-99/relay/internal/chat"
	"go.uber.org/zap"
)

// Handler upgrades GET /v1/ws connections.
type Handler struct {
	hub       *Hub
	gateway   *chat.Gateway
	access    *access.Checker
	jwtSecret string
	logger    *zap.Logger
}

func NewHandler(hub *Hub, gateway *chat.Gateway, checker *access.Checker, jwtSecret string, logger *zap.Logger) *Handler {
	return &Handler{
		hub:       hub,
		gateway:   gateway,
		access:    checker,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The JWT is the access control; the browser's Origin header is not
	// part of it.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Serve handles GET /v1/ws?token=<jwt>
//
// The token rides a query parameter because browser WebSocket clients
// can't set an Authorization header on the upgrade request.
func (h *Handler) Serve(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	claims, err := auth.ParseToken(token, h.jwtSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}

	client := NewClient(h.hub, conn, claims.UserID, h.gateway, h.access, h.logger)
	h.hub.register <- client

	go client.WritePump()
	go client.ReadPump()
}

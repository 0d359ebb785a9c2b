package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/relay/internal/access"
	"github.com/lalith-99/relay/internal/api"
	"github.com/lalith-99/relay/internal/chat"
	"github.com/lalith-99/relay/internal/config"
	"github.com/lalith-99/relay/internal/db"
	"github.com/lalith-99/relay/internal/middleware"
	"github.com/lalith-99/relay/internal/observ"
	"github.com/lalith-99/relay/internal/repository/postgres"
	"github.com/lalith-99/relay/internal/store"
	"github.com/lalith-99/relay/internal/ws"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// ---------------------------------------------------------------
	// 1. Load config
	// ---------------------------------------------------------------
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// ---------------------------------------------------------------
	// 2. Create logger
	// ---------------------------------------------------------------
	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	// ---------------------------------------------------------------
	// 3. Connect to Postgres (the directory: tenants, users, channels,
	//    membership, invitations)
	//
	// context.Background() at startup: there's no parent request or
	// deadline yet — startup is "take as long as you need to connect".
	// ---------------------------------------------------------------
	database, err := db.New(context.Background(), cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.Close()

	pool := database.Pool()
	channelRepo := postgres.NewChannelStore(pool)
	membershipRepo := postgres.NewMembershipStore(pool)
	userRepo := postgres.NewUserStore(pool)
	tenantRepo := postgres.NewTenantStore(pool)
	inviteRepo := postgres.NewInviteStore(pool)

	// ---------------------------------------------------------------
	// 4. Live message store + chat gateway
	//
	// Messages do NOT live in Postgres. The live store holds the
	// per-channel collections and fans full snapshots out to
	// subscribers; the gateway is its only client.
	// ---------------------------------------------------------------
	var liveStore store.LiveStore
	switch cfg.StoreBackend {
	case "memory":
		logger.Warn("using in-memory live store; messages are lost on restart")
		liveStore = store.NewMemory()
	case "redis":
		redisStore, err := store.NewRedis(cfg.RedisURL, logger)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisStore.Close()
		liveStore = redisStore
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	gateway := chat.NewGateway(liveStore, logger)
	checker := access.NewChecker(membershipRepo)

	// ---------------------------------------------------------------
	// 5. WebSocket hub
	// ---------------------------------------------------------------
	hub := ws.NewHub(logger)
	go hub.Run()

	// ---------------------------------------------------------------
	// 6. Handlers and routes
	// ---------------------------------------------------------------
	authHandler := api.NewAuthHandler(userRepo, tenantRepo, inviteRepo, cfg.JWTSecret, logger)
	channelHandler := api.NewChannelHandler(channelRepo, membershipRepo, userRepo, logger)
	membershipHandler := api.NewMembershipHandler(membershipRepo, logger)
	messageHandler := api.NewMessageHandler(gateway, checker, logger)
	userHandler := api.NewUserHandler(userRepo, logger)
	wsHandler := ws.NewHandler(hub, gateway, checker, cfg.JWTSecret, logger)

	srv := gin.New()
	srv.Use(gin.Logger(), gin.Recovery())

	logger.Info("starting relay",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.Env),
		zap.String("store_backend", cfg.StoreBackend),
	)

	// Health check is PUBLIC — load balancers hit this to check liveness.
	srv.GET("/v1/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// Public auth surface: no JWT yet, these endpoints produce one.
	srv.POST("/v1/auth/signup", authHandler.Signup)
	srv.POST("/v1/auth/login", authHandler.Login)
	srv.GET("/v1/auth/invites/:token", authHandler.GetInvite)
	srv.POST("/v1/auth/invites/:token/accept", authHandler.AcceptInvite)

	// The websocket upgrade authenticates via query token, not the
	// Authorization header, so it sits outside the middleware group.
	srv.GET("/v1/ws", wsHandler.Serve)

	// Everything else requires a valid JWT.
	v1 := srv.Group("/v1")
	v1.Use(middleware.AuthMiddleware(cfg.JWTSecret))

	v1.GET("/users/me", userHandler.GetMe)
	v1.GET("/users/:id", userHandler.GetByID)

	v1.POST("/invites", authHandler.CreateInvite)

	v1.POST("/channels", channelHandler.Create)
	v1.GET("/channels", channelHandler.List)
	v1.GET("/channels/:id", channelHandler.GetByID)
	v1.POST("/channels/:id/join", membershipHandler.Join)
	v1.POST("/channels/:id/leave", membershipHandler.Leave)
	v1.GET("/channels/:id/members", membershipHandler.ListMembers)

	v1.POST("/dms/:userID", channelHandler.ResolveDM)

	v1.GET("/channels/:id/messages", messageHandler.List)
	v1.POST("/channels/:id/messages", messageHandler.Send)
	v1.PATCH("/channels/:id/messages/:messageID", messageHandler.Edit)
	v1.DELETE("/channels/:id/messages/:messageID", messageHandler.Delete)
	v1.PUT("/channels/:id/messages/:messageID/reactions/:emoji", messageHandler.ToggleReaction)

	srv.Run(":" + cfg.Port)

	return nil
}

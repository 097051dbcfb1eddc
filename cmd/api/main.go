package main

import (
	"context"
	"fmt"
	"log"

	"github.com/JabulaniUsen/new-leenk/config"
	"github.com/JabulaniUsen/new-leenk/internal/autoreply"
	"github.com/JabulaniUsen/new-leenk/internal/domain"
	"github.com/JabulaniUsen/new-leenk/internal/feed"
	"github.com/JabulaniUsen/new-leenk/internal/handler"
	"github.com/JabulaniUsen/new-leenk/internal/middleware"
	"github.com/JabulaniUsen/new-leenk/internal/notify"
	"github.com/JabulaniUsen/new-leenk/internal/pagination"
	"github.com/JabulaniUsen/new-leenk/internal/repository"
	"github.com/JabulaniUsen/new-leenk/internal/rollup"
	"github.com/JabulaniUsen/new-leenk/internal/services"
	"github.com/JabulaniUsen/new-leenk/internal/storage"
	"github.com/JabulaniUsen/new-leenk/internal/websocket"
	"github.com/JabulaniUsen/new-leenk/pkg/database"
	"github.com/JabulaniUsen/new-leenk/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// rollupStore stitches the two repositories into the read surface the rollup
// engine needs.
type rollupStore struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
}

func (s rollupStore) ListByBusiness(ctx context.Context, businessID uuid.UUID, limit int) ([]domain.Conversation, error) {
	return s.conversations.ListByBusiness(ctx, businessID, limit)
}

func (s rollupStore) CountUnread(ctx context.Context, conversationID uuid.UUID) (int64, error) {
	return s.messages.CountUnread(ctx, conversationID)
}

func (s rollupStore) GetLatest(ctx context.Context, conversationID uuid.UUID) (domain.Message, error) {
	return s.messages.GetLatest(ctx, conversationID)
}

func (s rollupStore) MarkConversationRead(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error) {
	return s.messages.MarkConversationRead(ctx, conversationID)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Server.Environment)
	defer appLogger.Sync()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		appLogger.Errorf("failed to connect to database: %v", err)
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		appLogger.Errorf("failed to run migrations: %v", err)
		log.Fatal(err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		appLogger.Errorf("failed to connect to redis: %v", err)
		log.Fatal(err)
	}

	publisher := feed.NewPublisher(redisClient, appLogger)
	changeFeed := feed.NewFeed(redisClient, appLogger)

	businessRepo := repository.NewBusinessRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	rollupEngine := rollup.NewEngine(rollupStore{conversations: conversationRepo, messages: messageRepo})
	pager := pagination.NewEngine(messageRepo)
	notifier := notify.NewLogNotifier(appLogger)

	trigger := autoreply.NewTrigger(autoreply.Stores{
		Businesses:    businessRepo,
		Conversations: conversationRepo,
		Messages:      messageRepo,
	}, publisher, notifier, appLogger)

	authService := services.NewAuthService(businessRepo, cfg.Auth.JWTSecret)
	businessService := services.NewBusinessService(businessRepo)
	messageService := services.NewMessageService(messageRepo, conversationRepo, businessRepo, publisher, notifier, appLogger)
	conversationService := services.NewConversationService(conversationRepo, rollupEngine, publisher, appLogger)
	broadcastService := services.NewBroadcastService(messageRepo, conversationRepo, publisher, appLogger)

	authHandler := handler.NewAuthHandler(authService)
	businessHandler := handler.NewBusinessHandler(businessService)
	messageHandler := handler.NewMessageHandler(messageService, pager)
	conversationHandler := handler.NewConversationHandler(conversationService, trigger, appLogger)
	broadcastHandler := handler.NewBroadcastHandler(broadcastService)
	wsHandler := websocket.NewHandler(authService, changeFeed, appLogger)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggingMiddleware(appLogger))
	r.Use(middleware.ErrorHandler(appLogger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public surface used by the customer widget.
	public := r.Group("/api/v1")
	{
		public.POST("/auth/signup", authHandler.Signup)
		public.POST("/auth/login", authHandler.Login)
		public.GET("/businesses/:id/public", businessHandler.Public)
		public.POST("/conversations/open", conversationHandler.Open)
		public.POST("/messages/customer", messageHandler.CustomerSend)
		public.GET("/conversations/:id/messages", messageHandler.Page)
		public.GET("/ws/conversations/:id", wsHandler.ConnectConversation)
	}
	r.GET("/ws", wsHandler.ConnectBusiness)

	// Authenticated business surface.
	authed := r.Group("/api/v1", middleware.AuthMiddleware(authService))
	{
		authed.GET("/me", businessHandler.Me)
		authed.PUT("/me/profile", businessHandler.UpdateProfile)
		authed.PUT("/me/away", businessHandler.UpdateAwaySettings)
		authed.PUT("/me/online", businessHandler.SetOnline)

		authed.GET("/conversations", conversationHandler.List)
		authed.GET("/conversations/:id", conversationHandler.Get)
		authed.PUT("/conversations/:id/pin", conversationHandler.Pin)
		authed.PUT("/conversations/:id/profile", conversationHandler.UpdateProfile)
		authed.POST("/conversations/:id/read", conversationHandler.MarkRead)
		authed.DELETE("/conversations/:id", conversationHandler.Delete)

		authed.POST("/messages", messageHandler.Send)
		authed.PUT("/messages/:id", messageHandler.Edit)
		authed.DELETE("/messages/:id", messageHandler.Delete)

		authed.POST("/broadcasts", broadcastHandler.Send)

		if storageClient, err := storage.NewClient(context.Background(), cfg.S3); err != nil {
			appLogger.Warnf("uploads disabled: %v", err)
		} else {
			uploadHandler := handler.NewUploadHandler(storageClient)
			authed.POST("/uploads", uploadHandler.Upload)
		}
	}

	appLogger.Infof("starting server on port %s", cfg.Server.Port)
	if err := r.Run(fmt.Sprintf(":%s", cfg.Server.Port)); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

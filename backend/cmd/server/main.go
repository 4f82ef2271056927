package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"instagram-clone/backend/internal/auth"
	"instagram-clone/backend/internal/chat"
	"instagram-clone/backend/internal/httpapi"
	"instagram-clone/backend/internal/posts"
	"instagram-clone/backend/internal/store"
	"instagram-clone/backend/internal/store/memstore"
	"instagram-clone/backend/internal/store/mongostore"
	"instagram-clone/backend/internal/upload"
	"instagram-clone/backend/internal/users"
	"instagram-clone/backend/pkg/config"
	"instagram-clone/backend/pkg/logger"
)

func main() {
	// Load configuration first so the logger mode matches the env
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	if err := logger.Init(cfg.Env); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting HTTP API server...")

	ctx := context.Background()

	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to open store", zap.Error(err))
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			log.Error("Failed to close store", zap.Error(err))
		}
	}()

	uploads, err := upload.NewService(cfg.UploadDir)
	if err != nil {
		log.Fatal("Failed to prepare upload directory", zap.Error(err))
	}

	usersSvc := users.NewService(st)
	followSvc := users.NewFollowService(st)
	postsSvc := posts.NewService(st, st, uploads)
	engagementSvc := posts.NewEngagementService(st, st)
	conversationsSvc := chat.NewConversationService(st, st)
	messagesSvc := chat.NewMessageService(st, st)
	authSvc := auth.NewService(usersSvc, cfg.JWTSecret, cfg.JWTExpiry)

	var limiter *httpapi.RateLimiter
	if cfg.RedisAddr != "" {
		limiter, err = httpapi.NewRateLimiter(cfg.RedisAddr, cfg.RateLimitRPS, cfg.RateLimitBurst)
		if err != nil {
			log.Fatal("Failed to connect rate limiter", zap.Error(err))
		}
		defer limiter.Close()
	}

	server := httpapi.NewServer(httpapi.Deps{
		Config:        cfg,
		Auth:          authSvc,
		Users:         usersSvc,
		Follow:        followSvc,
		Posts:         postsSvc,
		Engagement:    engagementSvc,
		Conversations: conversationsSvc,
		Messages:      messagesSvc,
		Uploads:       uploads,
		Limiter:       limiter,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server.Router(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started",
		zap.String("port", cfg.Port),
		zap.String("store", cfg.StoreBackend),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// openStore builds the configured store backend. Mongo gets its indexes
// created up front; the consistency rules depend on them.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.StoreBackend == config.StoreMemory {
		return memstore.New(), nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	st, err := mongostore.New(connectCtx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, err
	}
	if err := st.EnsureIndexes(connectCtx); err != nil {
		_ = st.Close(ctx)
		return nil, err
	}
	return st, nil
}

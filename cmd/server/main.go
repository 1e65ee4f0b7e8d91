// File: cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iyunix/go-bazaar-chat/internal/config"
	"github.com/iyunix/go-bazaar-chat/internal/database"
	"github.com/iyunix/go-bazaar-chat/internal/handlers"
	"github.com/iyunix/go-bazaar-chat/internal/ratelimit"
	"github.com/iyunix/go-bazaar-chat/internal/realtime"
	"github.com/iyunix/go-bazaar-chat/internal/repository/message"
	"github.com/iyunix/go-bazaar-chat/internal/repository/user"
	"github.com/iyunix/go-bazaar-chat/internal/services"
	"github.com/iyunix/go-bazaar-chat/internal/services/user_services"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if cfg.JWTSecretKey == "" {
		log.Println("WARNING: JWT_SECRET_KEY is empty; tokens are signed with an empty key (development only)")
	}

	logger := services.NewSlogLogger(os.Stdout, "bazaar-chat", services.ParseLevel(cfg.LogLevel), cfg.IsProduction())

	db, err := database.Open(cfg.DatabasePath, services.ParseLevel(cfg.LogLevel) == slog.LevelDebug)
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}

	// --- Repositories ---
	userRepo := user.NewGormUserRepository(db)
	messageRepo := message.NewMessageRepository(db)

	// --- Services ---
	hub := realtime.NewHub(realtime.NewRegistry(), logger)
	chatService, err := services.NewChatService(messageRepo, hub, logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Chat Service: %v", err)
	}
	authService := user_services.NewAuthService(userRepo, cfg.JWTSecretKey, cfg.TokenTTL, logger)
	directoryService := user_services.NewDirectoryService(userRepo, logger)

	authLimiter := ratelimit.NewMemoryRateLimiter(ratelimit.AuthConfig(cfg.AuthRateLimitAttempts, cfg.AuthRateLimitWindow))
	defer authLimiter.Close()

	// --- Handlers ---
	router := handlers.NewRouter(handlers.RouterDeps{
		Chat:           handlers.NewChatHandler(chatService),
		Auth:           handlers.NewAuthHandler(authService, directoryService),
		Socket:         handlers.NewSocketHandler(hub, authService, cfg.AllowedOrigins, cfg.WSSendBuffer, logger),
		Tokens:         authService,
		AuthLimiter:    authLimiter,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("server starting", "addr", srv.Addr, "database", cfg.DatabasePath, "env", cfg.Environment)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down server gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Hijacked websocket connections are not tracked by Shutdown.
	hub.Close()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", "error", err)
		return
	}
	logger.Info("server stopped gracefully")
}

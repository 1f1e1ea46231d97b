package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/parlor-chat/parlor/internal/api"
	"github.com/parlor-chat/parlor/internal/api/middleware"
	"github.com/parlor-chat/parlor/internal/archive"
	"github.com/parlor-chat/parlor/internal/chat"
	"github.com/parlor-chat/parlor/internal/config"
	"github.com/parlor-chat/parlor/internal/handlers"
	"github.com/parlor-chat/parlor/internal/notify"
	"github.com/parlor-chat/parlor/internal/session"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx := context.Background()

	// The chat store is volatile: everything resets on restart. The archive,
	// when configured, keeps the durable mirror.
	store := chat.NewStore()

	// Initialize Redis (sessions + rate limiting)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisClient.Close()
		logger.Info().Msg("connected to Redis")
	}

	var sessions session.Store
	if redisClient != nil {
		sessions = session.NewRedisStore(redisClient, cfg.SessionTTL)
	} else {
		sessions = session.NewMemoryStore(cfg.SessionTTL)
		logger.Info().Msg("using in-memory sessions")
	}

	// Initialize the durable archive
	var arc archive.Archive
	if cfg.DatabaseURL != "" {
		pg, err := archive.NewPostgresArchive(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		defer pg.Close()
		arc = pg
		logger.Info().Msg("archiving to PostgreSQL")
	} else if cfg.ArchivePath != "" {
		lite, err := archive.NewSQLiteArchive(ctx, cfg.ArchivePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("sqlite open failed")
		}
		defer lite.Close()
		arc = lite
		logger.Info().Str("path", cfg.ArchivePath).Msg("archiving to SQLite")
	}

	// Notification sink: inert without credentials
	var sink notify.Sink = notify.NoopSink{}
	if cfg.NotifyConfigured() {
		sink = notify.NewTelegramSink(cfg.TelegramBotToken, cfg.TelegramChatID)
		logger.Info().Msg("telegram notifications enabled")
	} else {
		logger.Warn().Msg("telegram credentials not configured, notifications disabled")
	}
	notifier := notify.NewDispatcher(sink, logger)
	defer notifier.Close()

	// Create router
	h := handlers.NewHandler(store, sessions, arc, notifier, redisClient, logger)
	auth := middleware.NewAuthMiddleware(sessions, store)
	router := api.NewRouter(logger, h, auth, redisClient, cfg.RateLimitWhitelist)

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting Parlor server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	// Graceful shutdown with 30 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}

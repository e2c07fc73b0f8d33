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

	"github.com/ByteEmpire/roompartner/internal/api"
	"github.com/ByteEmpire/roompartner/internal/chat"
	"github.com/ByteEmpire/roompartner/internal/config"
	"github.com/ByteEmpire/roompartner/internal/handlers"
	"github.com/ByteEmpire/roompartner/internal/store"
	"github.com/ByteEmpire/roompartner/internal/ws"
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

	// Initialize the message store: Postgres when configured, SQLite
	// fallback for development.
	var db store.DataStore
	if cfg.DatabaseURL != "" {
		pgStore, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		db = pgStore
		logger.Info().Msg("connected to PostgreSQL")
	} else {
		sqliteStore, err := store.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("sqlite open failed")
		}
		db = sqliteStore
		logger.Info().Msg("using SQLite store")
	}
	defer db.Close()

	// Initialize Redis (optional, enables rate limiting)
	var redisStore *store.RedisStore
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		var err error
		redisStore, err = store.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisStore.Close()
		redisClient = redisStore.Client()
		logger.Info().Msg("connected to Redis")
	}

	// Wire the messaging core. The presence registry lives for the whole
	// process; entries come and go with individual connections.
	secret := []byte(cfg.JWTSecret)
	registry := chat.NewRegistry()
	broadcaster := chat.NewBroadcaster(registry, logger)
	router := chat.NewRouter(db, db, registry, logger)
	aggregator := chat.NewAggregator(db, db, registry, logger)
	gateway := ws.NewGateway(broadcaster, secret, cfg.FrontendURL, logger)

	h := handlers.NewHandler(router, aggregator, db, redisStore)

	mux := api.NewRouter(api.Config{
		Logger:        logger,
		Handler:       h,
		Gateway:       gateway,
		JWTSecret:     secret,
		RedisClient:   redisClient,
		AllowedOrigin: cfg.FrontendURL,
	})

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting roompartner messaging server")

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

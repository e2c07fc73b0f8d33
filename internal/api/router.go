package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ByteEmpire/roompartner/internal/api/middleware"
	"github.com/ByteEmpire/roompartner/internal/handlers"
)

// Config carries the router's dependencies.
type Config struct {
	Logger        zerolog.Logger
	Handler       *handlers.Handler
	Gateway       http.Handler // websocket entry point
	JWTSecret     []byte
	RedisClient   *redis.Client // nil disables rate limiting
	AllowedOrigin string        // frontend origin for CORS; empty allows any
}

// NewRouter creates and configures the HTTP router.
func NewRouter(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware (order matters!)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(8 * 1024)) // 8KB max body
	r.Use(middleware.ValidateRequest)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(chimw.Recoverer)

	// Rate limiting
	limiter := middleware.NewRateLimiter(cfg.RedisClient, cfg.Logger)
	r.Use(limiter.Middleware)

	// CORS - the browser client sends credentials with every request
	allowedOrigins := []string{"*"}
	allowCredentials := false
	if cfg.AllowedOrigin != "" {
		allowedOrigins = []string{cfg.AllowedOrigin}
		allowCredentials = true
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: allowCredentials,
		MaxAge:           300,
	}))

	auth := middleware.NewAuthMiddleware(cfg.JWTSecret)

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// Public routes (no auth required)
	r.Get("/health", cfg.Handler.Health)

	// Live transport; the gateway authenticates the handshake itself
	// since browsers cannot set headers on websocket upgrades.
	r.Handle("/ws", cfg.Gateway)

	// Authenticated routes (require bearer token)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)

		r.Post("/chat/messages", cfg.Handler.SendMessage)
		r.Get("/chat/messages/{userId}", cfg.Handler.GetMessages)
		r.Put("/chat/messages/read/{senderId}", cfg.Handler.MarkAsRead)
		r.Get("/chat/conversations", cfg.Handler.GetConversations)
	})

	return r
}

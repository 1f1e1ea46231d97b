package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/parlor-chat/parlor/internal/api/middleware"
	"github.com/parlor-chat/parlor/internal/chat"
	"github.com/parlor-chat/parlor/internal/handlers"
)

// NewRouter creates and configures the HTTP router. redisClient may be nil;
// rate limiting is skipped without it.
func NewRouter(logger zerolog.Logger, h *handlers.Handler, auth *middleware.AuthMiddleware, redisClient *redis.Client, rateLimitWhitelist []string) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware (order matters!)
	r.Use(middleware.SecurityHeaders)
	// Worst-case JSON escaping inflates a message body six-fold (\uXXXX per
	// byte); 8x the core limit leaves room for that plus the envelope.
	r.Use(middleware.MaxBodySize(8 * chat.MaxBodyBytes))
	r.Use(middleware.RequireJSON)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// Rate limiting (needs Redis)
	if redisClient != nil {
		limiter := middleware.NewRateLimiter(redisClient, logger, rateLimitWhitelist)
		r.Use(limiter.Middleware)
	}

	// CORS - browser clients may be served from a different origin
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// Public routes (no auth required)
	r.Get("/health", h.Health)
	r.Post("/login", h.Login)
	r.Get("/who/{username}", h.Who)

	// Authenticated routes (require a live session)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)

		r.Post("/logout", h.Logout)
		r.Post("/api/nickname", h.Nickname)

		r.Get("/api/rooms", h.ListRooms)
		r.Get("/api/messages/{room}", h.GetRoomMessages)
		r.Post("/api/send_message", h.SendMessage)
		r.Post("/api/edit_message", h.EditMessage)
		r.Post("/api/delete_message", h.DeleteMessage)
		r.Post("/api/create_room", h.CreateRoom)

		r.Post("/api/send_private_message", h.SendPrivateMessage)
		r.Get("/api/private_messages", h.GetPrivateMessages)
	})

	return r
}

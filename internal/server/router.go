package server

import (
	"log/slog"
	"net/http"

	"github.com/iudanet/authkeeper/internal/server/handlers"
	"github.com/iudanet/authkeeper/internal/server/middleware"
	"github.com/iudanet/authkeeper/internal/server/token"
)

const healthPath = "/api/v1/health"

// Router собирает маршруты HTTP API
type Router struct {
	logger      *slog.Logger
	auth        *handlers.AuthHandler
	health      *handlers.HealthHandler
	codec       *token.Codec
	rateLimiter *middleware.RateLimiter
}

// NewRouter creates router for the auth API
func NewRouter(
	logger *slog.Logger,
	auth *handlers.AuthHandler,
	health *handlers.HealthHandler,
	codec *token.Codec,
	rateLimiter *middleware.RateLimiter,
) *Router {
	return &Router{
		logger:      logger,
		auth:        auth,
		health:      health,
		codec:       codec,
		rateLimiter: rateLimiter,
	}
}

// Handler returns the fully wrapped http.Handler
func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	// Публичные эндпоинты аутентификации, ограниченные по IP
	mux.Handle("POST /api/v1/auth/register", rt.limited(rt.auth.Register))
	mux.Handle("POST /api/v1/auth/verify", rt.limited(rt.auth.Verify))
	mux.Handle("POST /api/v1/auth/resend", rt.limited(rt.auth.Resend))
	mux.Handle("POST /api/v1/auth/login", rt.limited(rt.auth.Login))
	mux.Handle("POST /api/v1/auth/refresh", rt.limited(rt.auth.Refresh))

	// Защищенный эндпоинт, требует access token
	requireAccess := middleware.AuthMiddleware(rt.logger, rt.codec)
	mux.Handle("GET /api/v1/auth/me", rt.rateLimiter.Middleware(requireAccess(http.HandlerFunc(rt.auth.Me))))

	mux.HandleFunc("GET "+healthPath, rt.health.Health)

	var handler http.Handler = mux
	handler = middleware.LoggingMiddleware(rt.logger, healthPath)(handler)
	handler = middleware.RecoveryMiddleware(rt.logger)(handler)
	handler = middleware.SentryHubMiddleware()(handler)

	return handler
}

func (rt *Router) limited(fn http.HandlerFunc) http.Handler {
	return rt.rateLimiter.Middleware(fn)
}

package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/authkeeper/internal/server/handlers"
	"github.com/iudanet/authkeeper/internal/server/token"
)

const bearerPrefix = "Bearer "

// AuthMiddleware создает middleware для проверки access токена.
// Принимаются только неистекшие токены типа ACCESS, claims кладутся в контекст.
func AuthMiddleware(logger *slog.Logger, codec *token.Codec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.WarnContext(ctx, "missing Authorization header", slog.String("path", r.URL.Path))
				handlers.WriteError(logger, w, "missing token", http.StatusUnauthorized)
				return
			}

			if !strings.HasPrefix(authHeader, bearerPrefix) {
				logger.WarnContext(ctx, "invalid Authorization header format", slog.String("path", r.URL.Path))
				handlers.WriteError(logger, w, "invalid token format", http.StatusUnauthorized)
				return
			}

			claims, err := codec.Validate(strings.TrimPrefix(authHeader, bearerPrefix), token.KindAccess, "")
			if err != nil {
				// сам токен в лог не пишем
				reason := "invalid"
				if errors.Is(err, token.ErrExpired) {
					reason = "expired"
				}
				logger.WarnContext(ctx, "access token rejected", slog.String("reason", reason))
				handlers.WriteError(logger, w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			logger.DebugContext(ctx, "request authenticated", slog.String("subject", claims.Subject))

			next.ServeHTTP(w, r.WithContext(handlers.WithClaims(ctx, claims)))
		})
	}
}

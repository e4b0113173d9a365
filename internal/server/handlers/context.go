package handlers

import (
	"context"

	"github.com/iudanet/authkeeper/internal/server/token"
)

type contextKey string

// ClaimsKey is the context key for the claims of a validated access token
const ClaimsKey contextKey = "claims"

// WithClaims returns a copy of ctx carrying claims
func WithClaims(ctx context.Context, claims *token.Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

// ClaimsFromContext returns the access token claims placed by the auth middleware
func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*token.Claims)
	return claims, ok && claims != nil
}

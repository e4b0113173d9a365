package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/authkeeper/internal/server/handlers"
	"github.com/iudanet/authkeeper/internal/server/token"
	"github.com/iudanet/authkeeper/pkg/api"
)

// setupTestLogger creates a logger for testing
func setupTestLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelError,
	}
	handler := slog.NewTextHandler(os.Stdout, opts)
	return slog.New(handler)
}

func setupTestCodec(t *testing.T, secret string) *token.Codec {
	t.Helper()
	codec, err := token.NewCodec(token.Config{
		Issuer:          "authkeeper-test",
		Secret:          []byte(secret),
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
	require.NoError(t, err)
	return codec
}

// claimsHandler checks that claims reached the context
func claimsHandler(t *testing.T, wantSubject string, wantRoles []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := handlers.ClaimsFromContext(r.Context())
		require.True(t, ok, "claims should be in context")
		assert.Equal(t, wantSubject, claims.Subject)
		assert.Equal(t, wantRoles, claims.Roles)
		assert.Equal(t, token.KindAccess, claims.Kind)

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

func TestAuthMiddleware_Success(t *testing.T) {
	codec := setupTestCodec(t, "test-secret")
	access, err := codec.SignAccess("a@x.com", []string{"TESTER"})
	require.NoError(t, err)

	handler := AuthMiddleware(setupTestLogger(), codec)(claimsHandler(t, "a@x.com", []string{"TESTER"}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	codec := setupTestCodec(t, "test-secret")
	other := setupTestCodec(t, "other-secret")

	refresh, err := codec.SignRefresh("a@x.com", nil)
	require.NoError(t, err)
	expired, err := codec.Sign("a@x.com", token.KindAccess, -time.Minute, nil)
	require.NoError(t, err)
	foreign, err := other.SignAccess("a@x.com", nil)
	require.NoError(t, err)
	valid, err := codec.SignAccess("a@x.com", nil)
	require.NoError(t, err)

	tests := []struct {
		name        string
		header      string
		wantMessage string
	}{
		{name: "missing header", header: "", wantMessage: "missing token"},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", wantMessage: "invalid token format"},
		{name: "no space after scheme", header: "Bearer" + valid, wantMessage: "invalid token format"},
		{name: "garbage token", header: "Bearer not.a.token", wantMessage: "invalid or expired token"},
		{name: "refresh token", header: "Bearer " + refresh, wantMessage: "invalid or expired token"},
		{name: "expired token", header: "Bearer " + expired, wantMessage: "invalid or expired token"},
		{name: "wrong secret", header: "Bearer " + foreign, wantMessage: "invalid or expired token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			})
			handler := AuthMiddleware(setupTestLogger(), codec)(next)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.False(t, called, "next handler must not be called")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var resp api.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.wantMessage, resp.Message)
		})
	}
}

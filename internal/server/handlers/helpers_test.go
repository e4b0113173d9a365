package handlers

import (
	"context"
	"log/slog"
	"os"

	"github.com/iudanet/authkeeper/internal/models"
	"github.com/iudanet/authkeeper/internal/server/auth"
)

func setupTestLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelError, // Only show errors in tests
	}
	handler := slog.NewTextHandler(os.Stdout, opts)
	return slog.New(handler)
}

// mockAuthService is a mock implementation of AuthService for testing
type mockAuthService struct {
	registerFunc     func(ctx context.Context, identity, secret string, profile auth.Profile, roleTag string) (*models.Account, error)
	authenticateFunc func(ctx context.Context, identity, secret string) (*auth.TokenPair, error)
	verifyFunc       func(ctx context.Context, identity, code string) error
	resendFunc       func(ctx context.Context, identity string) error
	refreshFunc      func(ctx context.Context, header string) (*auth.TokenPair, error)
}

func (m *mockAuthService) Register(ctx context.Context, identity, secret string, profile auth.Profile, roleTag string) (*models.Account, error) {
	return m.registerFunc(ctx, identity, secret, profile, roleTag)
}

func (m *mockAuthService) Authenticate(ctx context.Context, identity, secret string) (*auth.TokenPair, error) {
	return m.authenticateFunc(ctx, identity, secret)
}

func (m *mockAuthService) Verify(ctx context.Context, identity, code string) error {
	return m.verifyFunc(ctx, identity, code)
}

func (m *mockAuthService) ResendCode(ctx context.Context, identity string) error {
	return m.resendFunc(ctx, identity)
}

func (m *mockAuthService) RefreshToken(ctx context.Context, header string) (*auth.TokenPair, error) {
	return m.refreshFunc(ctx, header)
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(context.Context) error {
	return m.err
}

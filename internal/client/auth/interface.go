package auth

import (
	"context"
	"errors"

	"github.com/iudanet/authkeeper/pkg/api"
)

var (
	// ErrNotLoggedIn indicates that no local session exists
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrSessionExpired indicates that the server rejected the stored refresh token
	ErrSessionExpired = errors.New("session expired, please login again")
)

// ServerAPI is the part of the HTTP client the service depends on
type ServerAPI interface {
	Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error)
	Verify(ctx context.Context, req api.VerifyRequest) error
	Resend(ctx context.Context, req api.ResendRequest) (*api.MessageResponse, error)
	Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*api.TokenResponse, error)
	Me(ctx context.Context, accessToken string) (*api.MeResponse, error)
	BaseURL() string
}

package storage

import (
	"context"
	"time"
)

// AuthStorage defines interface for storing the token pair on the client
type AuthStorage interface {
	// SaveAuth stores authentication data, replacing the previous session
	SaveAuth(ctx context.Context, auth *AuthData) error

	// GetAuth retrieves stored authentication data
	// Returns ErrAuthNotFound if no auth data exists
	GetAuth(ctx context.Context) (*AuthData, error)

	// DeleteAuth removes stored authentication data (logout)
	// Returns ErrAuthNotFound if no auth data exists
	DeleteAuth(ctx context.Context) error

	// IsAuthenticated checks if a session with an unexpired access token exists
	IsAuthenticated(ctx context.Context) (bool, error)
}

// AuthData represents the persisted client session
type AuthData struct {
	Identity     string   `json:"identity"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	Server       string   `json:"server"`
	Roles        []string `json:"roles,omitempty"`
	ExpiresAt    int64    `json:"expires_at"` // unix время истечения access token
}

// AccessExpired reports whether the access token is expired at now
func (a *AuthData) AccessExpired(now time.Time) bool {
	return now.Unix() >= a.ExpiresAt
}

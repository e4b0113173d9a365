// Package auth implements account registration, email verification, login and token refresh.
package auth

import (
	"context"
	"time"
)

// SecretHasher hashes secrets and compares them with stored hashes
type SecretHasher interface {
	Hash(secret string) (string, error)
	Matches(secret, hash string) bool
}

// MailSender delivers a message to an identity.
// Failures are reported as autherr.ErrDelivery and are never fatal to the caller.
type MailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// AttemptLimiter bounds the number of attempts per action and identity.
// Returns autherr.ErrTooManyAttempts when the limit is exceeded.
type AttemptLimiter interface {
	Allow(ctx context.Context, action, identity string) error
}

// Limited actions
const (
	ActionVerify = "verify"
	ActionResend = "resend"
)

// TokenPair is the result of a login or refresh
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration // время жизни access токена
}

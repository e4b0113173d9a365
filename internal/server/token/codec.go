// Package token signs and parses the HS256 bearer tokens issued by the auth service.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/iudanet/authkeeper/internal/autherr"
)

// Kind discriminates access tokens from refresh tokens
type Kind string

const (
	// KindAccess marks a short-lived token authorizing API calls
	KindAccess Kind = "ACCESS"
	// KindRefresh marks a long-lived token used only to mint access tokens
	KindRefresh Kind = "REFRESH"
)

// Config содержит конфигурацию для подписи токенов
type Config struct {
	Issuer          string
	Secret          []byte
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// Claims represents the typed payload of a token.
// Subject, IssuedAt and ExpiresAt live in RegisteredClaims (sub, iat, exp).
type Claims struct {
	Kind  Kind     `json:"type"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Codec signs and parses tokens with a single process-wide HMAC key
type Codec struct {
	now    func() time.Time
	cfg    Config
	parser *jwt.Parser
}

// NewCodec creates a codec. The secret must not be empty.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.Secret) == 0 {
		return nil, fmt.Errorf("token secret cannot be empty")
	}
	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		return nil, fmt.Errorf("token TTLs must be positive")
	}

	c := &Codec{
		cfg: cfg,
		now: time.Now,
	}
	// время проверяем сами в IsExpired/Validate, парсер отвечает только за структуру и подпись
	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	return c, nil
}

// TTL returns the configured lifetime for kind
func (c *Codec) TTL(kind Kind) time.Duration {
	if kind == KindRefresh {
		return c.cfg.RefreshTokenTTL
	}
	return c.cfg.AccessTokenTTL
}

// Sign produces a compact HS256 token for subject with the given kind, lifetime and roles
func (c *Codec) Sign(subject string, kind Kind, ttl time.Duration, roles []string) (string, error) {
	now := c.now()

	claims := Claims{
		Kind:  kind,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    c.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// SignAccess signs an ACCESS token with the configured access TTL
func (c *Codec) SignAccess(subject string, roles []string) (string, error) {
	return c.Sign(subject, KindAccess, c.cfg.AccessTokenTTL, roles)
}

// SignRefresh signs a REFRESH token with the configured refresh TTL
func (c *Codec) SignRefresh(subject string, roles []string) (string, error) {
	return c.Sign(subject, KindRefresh, c.cfg.RefreshTokenTTL, roles)
}

// ParseClaims verifies structure and signature and returns the claims.
// Expiry is not checked. Fails with MalformedToken.
func (c *Codec) ParseClaims(raw string) (*Claims, error) {
	claims := &Claims{}

	tok, err := c.parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return c.cfg.Secret, nil
	})
	if err != nil {
		return nil, autherr.Wrap(autherr.ErrMalformedToken, raw, err)
	}
	if !tok.Valid || claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return nil, autherr.New(autherr.ErrMalformedToken, raw)
	}
	if claims.Kind != KindAccess && claims.Kind != KindRefresh {
		return nil, autherr.New(autherr.ErrMalformedToken, raw)
	}

	return claims, nil
}

// ParseSubject returns the token subject
func (c *Codec) ParseSubject(raw string) (string, error) {
	claims, err := c.ParseClaims(raw)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ParseKind returns the token kind
func (c *Codec) ParseKind(raw string) (Kind, error) {
	claims, err := c.ParseClaims(raw)
	if err != nil {
		return "", err
	}
	return claims.Kind, nil
}

// IsExpired reports whether the token is past its expiry. A token that cannot be parsed counts as expired.
func (c *Codec) IsExpired(raw string) bool {
	claims, err := c.ParseClaims(raw)
	if err != nil {
		return true
	}
	return c.now().After(claims.ExpiresAt.Time)
}

// ErrExpired is the cause attached to InvalidToken when a token is past its expiry
var ErrExpired = errors.New("token expired")

// Validate performs the full check used by protected endpoints and the refresh protocol:
// signature, expected kind, expected subject (skipped when empty) and expiry.
func (c *Codec) Validate(raw string, kind Kind, subject string) (*Claims, error) {
	claims, err := c.ParseClaims(raw)
	if err != nil {
		return nil, autherr.Wrap(autherr.ErrInvalidToken, raw, err)
	}
	if claims.Kind != kind {
		return nil, autherr.Wrap(autherr.ErrInvalidToken, raw, fmt.Errorf("expected %s token, got %s", kind, claims.Kind))
	}
	if subject != "" && claims.Subject != subject {
		return nil, autherr.Wrap(autherr.ErrInvalidToken, raw, fmt.Errorf("subject mismatch"))
	}
	if c.now().After(claims.ExpiresAt.Time) {
		return nil, autherr.Wrap(autherr.ErrInvalidToken, raw, ErrExpired)
	}
	return claims, nil
}

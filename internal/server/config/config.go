// Package config loads server settings from defaults, an optional .env file,
// environment variables and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"time"

	"github.com/iudanet/authkeeper/internal/server/limiter"
	"github.com/iudanet/authkeeper/internal/server/mail"
	"github.com/iudanet/authkeeper/internal/server/token"
)

// Storage drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Secret hashers
const (
	HasherBcrypt   = "bcrypt"
	HasherArgon2id = "argon2id"
)

// Config holds runtime settings of the auth server
type Config struct {
	HTTP    HTTPConfig
	Storage StorageConfig
	Token   TokenConfig
	Hasher  HasherConfig
	Mail    MailConfig
	Redis   RedisConfig
	Sentry  SentryConfig
	AppEnv  string
	// LogLevel: debug|info|warn|error
	LogLevel string
	EnvFile  string
}

// HTTPConfig содержит настройки HTTP сервера
type HTTPConfig struct {
	Addr string
	// TrustedProxies: сети, от которых принимаются X-Forwarded-For и X-Real-IP
	TrustedProxies     []netip.Prefix
	ShutdownTimeout    time.Duration
	RateLimitPerMinute int
}

// StorageConfig selects the credential store
type StorageConfig struct {
	Driver      string
	SQLitePath  string
	DatabaseURL string
}

// TokenConfig содержит параметры подписи токенов
type TokenConfig struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// HasherConfig selects the secret hashing algorithm
type HasherConfig struct {
	Algorithm  string
	BcryptCost int
}

// MailConfig содержит настройки SMTP. Пустой SMTPHost означает вывод писем в лог.
type MailConfig struct {
	SMTPHost     string
	SMTPUsername string
	SMTPPassword string
	From         string
	SMTPPort     int
}

// RedisConfig configures the attempt limiter. An empty Addr disables it.
type RedisConfig struct {
	Addr          string
	Password      string
	DB            int
	MaxAttempts   int
	AttemptWindow time.Duration
}

// SentryConfig configures error reporting. An empty DSN disables it.
type SentryConfig struct {
	DSN string
}

// Defaults returns development defaults. JWT_SECRET has no default and must be set.
func Defaults() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:               ":8080",
			ShutdownTimeout:    10 * time.Second,
			RateLimitPerMinute: 30,
		},
		Storage: StorageConfig{
			Driver:     DriverSQLite,
			SQLitePath: "authkeeper.db",
		},
		Token: TokenConfig{
			Issuer:     "authkeeper",
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 168 * time.Hour,
		},
		Hasher: HasherConfig{
			Algorithm:  HasherBcrypt,
			BcryptCost: 10,
		},
		Mail: MailConfig{
			SMTPPort: 587,
			From:     "noreply@authkeeper.local",
		},
		Redis: RedisConfig{
			MaxAttempts:   5,
			AttemptWindow: 15 * time.Minute,
		},
		AppEnv:   "development",
		LogLevel: "info",
		EnvFile:  ".env",
	}
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	var errs []error

	if c.Token.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Token.AccessTTL <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_TTL must be positive"))
	}
	if c.Token.RefreshTTL <= 0 {
		errs = append(errs, errors.New("REFRESH_TOKEN_TTL must be positive"))
	}

	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for sqlite storage"))
		}
	case DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for postgres storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver))
	}

	if c.Hasher.Algorithm != HasherBcrypt && c.Hasher.Algorithm != HasherArgon2id {
		errs = append(errs, fmt.Errorf("unknown PASSWORD_HASHER %q", c.Hasher.Algorithm))
	}
	if c.HTTP.RateLimitPerMinute <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must be positive"))
	}
	if c.Redis.Addr != "" && (c.Redis.MaxAttempts <= 0 || c.Redis.AttemptWindow <= 0) {
		errs = append(errs, errors.New("VERIFY_MAX_ATTEMPTS and VERIFY_ATTEMPT_WINDOW must be positive"))
	}

	return errors.Join(errs...)
}

// TokenCodecConfig returns the token codec configuration
func (c *Config) TokenCodecConfig() token.Config {
	return token.Config{
		Issuer:          c.Token.Issuer,
		Secret:          []byte(c.Token.Secret),
		AccessTokenTTL:  c.Token.AccessTTL,
		RefreshTokenTTL: c.Token.RefreshTTL,
	}
}

// SMTPConfig returns the SMTP sender configuration
func (c *Config) SMTPConfig() mail.SMTPConfig {
	return mail.SMTPConfig{
		Host:     c.Mail.SMTPHost,
		Port:     c.Mail.SMTPPort,
		Username: c.Mail.SMTPUsername,
		Password: c.Mail.SMTPPassword,
		From:     c.Mail.From,
	}
}

// LimiterConfig returns the attempt limiter configuration
func (c *Config) LimiterConfig() limiter.Config {
	return limiter.Config{
		Window:      c.Redis.AttemptWindow,
		MaxAttempts: c.Redis.MaxAttempts,
	}
}

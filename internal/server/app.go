// Package server assembles the auth server: storage, token codec, auth service,
// HTTP routing and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iudanet/authkeeper/internal/crypto"
	"github.com/iudanet/authkeeper/internal/server/auth"
	"github.com/iudanet/authkeeper/internal/server/config"
	"github.com/iudanet/authkeeper/internal/server/handlers"
	"github.com/iudanet/authkeeper/internal/server/limiter"
	"github.com/iudanet/authkeeper/internal/server/mail"
	"github.com/iudanet/authkeeper/internal/server/middleware"
	"github.com/iudanet/authkeeper/internal/server/observability"
	"github.com/iudanet/authkeeper/internal/server/storage"
	"github.com/iudanet/authkeeper/internal/server/storage/postgres"
	"github.com/iudanet/authkeeper/internal/server/storage/sqlite"
	"github.com/iudanet/authkeeper/internal/server/token"
)

// Store объединяет все возможности хранилища, нужные серверу
type Store interface {
	storage.AccountStorage
	storage.RoleStorage
	storage.Pinger
	Close() error
}

// App is the running auth server
type App struct {
	cfg         *config.Config
	logger      *slog.Logger
	store       Store
	redis       *redis.Client
	rateLimiter *middleware.RateLimiter
	server      *http.Server
}

// NewApp wires all dependencies from cfg. The caller must call Close.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, version string) (*App, error) {
	store, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	app := &App{
		cfg:    cfg,
		logger: logger,
		store:  store,
	}

	codec, err := token.NewCodec(cfg.TokenCodecConfig())
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("failed to create token codec: %w", err)
	}

	var opts []auth.Option
	if cfg.Redis.Addr != "" {
		app.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		attempts := limiter.NewRedisLimiter(app.redis, cfg.LimiterConfig())
		if err := attempts.Ping(ctx); err != nil {
			// лимитер работает в режиме fail-open, поэтому стартуем все равно
			logger.Warn("redis is unavailable, attempt limiting degraded",
				"addr", cfg.Redis.Addr, "error", err)
		}
		opts = append(opts, auth.WithLimiter(attempts))
	}

	service := auth.NewService(
		logger,
		store,
		store,
		newHasher(cfg.Hasher),
		newMailer(logger, cfg),
		codec,
		opts...,
	)

	app.rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitPerMinute, time.Minute, logger)
	app.rateLimiter.TrustProxies(cfg.HTTP.TrustedProxies)

	router := NewRouter(
		logger,
		handlers.NewAuthHandler(logger, service),
		handlers.NewHealthHandler(logger, store, version),
		codec,
		app.rateLimiter,
	)

	app.server = &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return app, nil
}

// Handler returns the HTTP handler served by the app
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run serves HTTP until ctx is canceled or SIGINT/SIGTERM is received,
// then shuts down gracefully within the configured timeout.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting",
			"addr", a.cfg.HTTP.Addr,
			"storage", a.cfg.Storage.Driver,
			"hasher", a.cfg.Hasher.Algorithm,
			"smtp", a.cfg.Mail.SMTPHost != "",
			"attempt_limiter", a.redis != nil,
		)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server", "timeout", a.cfg.HTTP.ShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	a.logger.Info("server stopped")
	return nil
}

// Close releases storage, redis and background workers
func (a *App) Close() error {
	var errs []error

	if a.rateLimiter != nil {
		a.rateLimiter.Stop()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close storage: %w", err))
		}
	}

	observability.FlushSentry()

	return errors.Join(errs...)
}

func openStorage(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		s, err := sqlite.New(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite storage: %w", err)
		}
		return s, nil
	case config.DriverPostgres:
		s, err := postgres.New(ctx, cfg.DatabaseURL, postgres.DefaultPoolConfig())
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres storage: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func newHasher(cfg config.HasherConfig) auth.SecretHasher {
	if cfg.Algorithm == config.HasherArgon2id {
		return crypto.NewArgon2Hasher(crypto.DefaultArgon2Params())
	}
	return crypto.NewBcryptHasher(cfg.BcryptCost)
}

func newMailer(logger *slog.Logger, cfg *config.Config) auth.MailSender {
	if cfg.Mail.SMTPHost == "" {
		return mail.NewLogSender(logger)
	}
	return mail.NewSMTPSender(logger, cfg.SMTPConfig())
}

package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type lookupFunc func(key string) (string, bool)

// Load builds the configuration: defaults, then .env file, then environment, then flags
func Load(args []string) (*Config, error) {
	return load(args, os.LookupEnv)
}

func load(args []string, environ lookupFunc) (*Config, error) {
	cfg := Defaults()

	if path, ok := environ("ENV_FILE"); ok && path != "" {
		cfg.EnvFile = path
	}

	lookup, err := withEnvFile(cfg.EnvFile, environ)
	if err != nil {
		return nil, err
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return nil, err
	}

	if err := parseFlags(&cfg, args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// withEnvFile overlays values from a .env file under the real environment.
// A missing file is not an error.
func withEnvFile(path string, environ lookupFunc) (lookupFunc, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return environ, nil
		}
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}

	return func(key string) (string, bool) {
		if v, ok := environ(key); ok {
			return v, true
		}
		v, ok := values[key]
		return v, ok
	}, nil
}

func applyEnv(cfg *Config, lookup lookupFunc) error {
	r := envReader{lookup: lookup}

	r.str("HTTP_ADDR", &cfg.HTTP.Addr)
	r.duration("SHUTDOWN_TIMEOUT", &cfg.HTTP.ShutdownTimeout)
	r.integer("RATE_LIMIT_PER_MINUTE", &cfg.HTTP.RateLimitPerMinute)
	r.prefixes("TRUSTED_PROXIES", &cfg.HTTP.TrustedProxies)

	r.str("STORAGE_DRIVER", &cfg.Storage.Driver)
	r.str("SQLITE_PATH", &cfg.Storage.SQLitePath)
	r.str("DATABASE_URL", &cfg.Storage.DatabaseURL)

	r.str("JWT_SECRET", &cfg.Token.Secret)
	r.str("JWT_ISSUER", &cfg.Token.Issuer)
	r.duration("ACCESS_TOKEN_TTL", &cfg.Token.AccessTTL)
	r.duration("REFRESH_TOKEN_TTL", &cfg.Token.RefreshTTL)

	r.str("PASSWORD_HASHER", &cfg.Hasher.Algorithm)
	r.integer("BCRYPT_COST", &cfg.Hasher.BcryptCost)

	r.str("SMTP_HOST", &cfg.Mail.SMTPHost)
	r.integer("SMTP_PORT", &cfg.Mail.SMTPPort)
	r.str("SMTP_USERNAME", &cfg.Mail.SMTPUsername)
	r.str("SMTP_PASSWORD", &cfg.Mail.SMTPPassword)
	r.str("MAIL_FROM", &cfg.Mail.From)

	r.str("REDIS_ADDR", &cfg.Redis.Addr)
	r.str("REDIS_PASSWORD", &cfg.Redis.Password)
	r.integer("REDIS_DB", &cfg.Redis.DB)
	r.integer("VERIFY_MAX_ATTEMPTS", &cfg.Redis.MaxAttempts)
	r.duration("VERIFY_ATTEMPT_WINDOW", &cfg.Redis.AttemptWindow)

	r.str("SENTRY_DSN", &cfg.Sentry.DSN)
	r.str("APP_ENV", &cfg.AppEnv)
	r.str("LOG_LEVEL", &cfg.LogLevel)

	return errors.Join(r.errs...)
}

// envReader collects parse errors instead of stopping at the first one
type envReader struct {
	lookup lookupFunc
	errs   []error
}

func (r *envReader) str(key string, dst *string) {
	if v, ok := r.lookup(key); ok && v != "" {
		*dst = v
	}
}

func (r *envReader) integer(key string, dst *int) {
	v, ok := r.lookup(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return
	}
	*dst = n
}

func (r *envReader) duration(key string, dst *time.Duration) {
	v, ok := r.lookup(key)
	if !ok || v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return
	}
	*dst = d
}

// prefixes reads a comma-separated list of CIDRs or bare IP addresses
func (r *envReader) prefixes(key string, dst *[]netip.Prefix) {
	v, ok := r.lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return
	}

	var out []netip.Prefix
	for _, item := range strings.Split(v, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if p, err := netip.ParsePrefix(item); err == nil {
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(item)
		if err != nil {
			r.errs = append(r.errs, fmt.Errorf("%s: invalid address %q", key, item))
			return
		}
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	*dst = out
}

// parseFlags overrides selected settings from command-line flags.
//
//	-a            HTTP listen address
//	-storage      sqlite | postgres
//	-sqlite-path  SQLite database file
//	-database-url PostgreSQL DSN
//	-log-level    debug | info | warn | error
func parseFlags(cfg *Config, args []string) error {
	flags := flag.NewFlagSet("server", flag.ContinueOnError)

	flags.StringVar(&cfg.HTTP.Addr, "a", cfg.HTTP.Addr, "HTTP listen address")
	flags.StringVar(&cfg.Storage.Driver, "storage", cfg.Storage.Driver, "storage driver (sqlite|postgres)")
	flags.StringVar(&cfg.Storage.SQLitePath, "sqlite-path", cfg.Storage.SQLitePath, "SQLite database file")
	flags.StringVar(&cfg.Storage.DatabaseURL, "database-url", cfg.Storage.DatabaseURL, "PostgreSQL DSN")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug|info|warn|error)")

	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	return nil
}

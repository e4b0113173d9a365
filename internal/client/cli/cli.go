// Package cli implements the commands of the authkeeper client.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/iudanet/authkeeper/internal/client/auth"
	"github.com/iudanet/authkeeper/internal/client/iocli"
	"github.com/iudanet/authkeeper/internal/client/storage"
	"github.com/iudanet/authkeeper/pkg/api"
)

// SecretEnv is the environment variable consulted first for the account secret
const SecretEnv = "AUTHKEEPER_SECRET"

// AuthService is the client-side account lifecycle used by commands
type AuthService interface {
	Register(ctx context.Context, in auth.RegisterInput) (*api.RegisterResponse, error)
	Verify(ctx context.Context, identity, code string) error
	Resend(ctx context.Context, identity string) error
	Login(ctx context.Context, identity, secret string) (*storage.AuthData, error)
	Refresh(ctx context.Context) (*storage.AuthData, error)
	WhoAmI(ctx context.Context) (*api.MeResponse, error)
	Session(ctx context.Context) (*storage.AuthData, error)
	Logout(ctx context.Context) error
}

// Secrets содержит неинтерактивные источники секрета
type Secrets struct {
	FromFile string
	FromArgs string
}

type Cli struct {
	io      iocli.IO
	auth    AuthService
	now     func() time.Time
	secrets Secrets
}

func New(io iocli.IO, authService AuthService, secrets Secrets) *Cli {
	return &Cli{
		io:      io,
		auth:    authService,
		secrets: secrets,
		now:     time.Now,
	}
}

// getSecret retrieves the account secret from various sources with priority:
// 1. Environment variable AUTHKEEPER_SECRET
// 2. File specified in Secrets.FromFile
// 3. Command-line parameter Secrets.FromArgs
// 4. Interactive prompt (fallback); with confirm the secret is asked twice
func (c *Cli) getSecret(prompt string, confirm bool) (string, error) {
	// Priority 1: Environment variable
	if envSecret := os.Getenv(SecretEnv); envSecret != "" {
		return envSecret, nil
	}

	// Priority 2: File
	if c.secrets.FromFile != "" {
		content, err := os.ReadFile(c.secrets.FromFile)
		if err != nil {
			return "", fmt.Errorf("failed to read secret file: %w", err)
		}
		// Убираем trailing newline/whitespace
		secret := strings.TrimSpace(string(content))
		if secret == "" {
			return "", fmt.Errorf("secret file is empty")
		}
		return secret, nil
	}

	// Priority 3: CLI parameter
	if c.secrets.FromArgs != "" {
		return c.secrets.FromArgs, nil
	}

	// Priority 4: Interactive prompt (fallback)
	secret, err := c.io.ReadPassword(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	if secret == "" {
		return "", fmt.Errorf("secret cannot be empty")
	}

	if confirm {
		again, err := c.io.ReadPassword("Confirm secret: ")
		if err != nil {
			return "", fmt.Errorf("failed to read confirmation: %w", err)
		}
		if again != secret {
			return "", fmt.Errorf("secrets do not match")
		}
	}

	return secret, nil
}

// argOrPrompt возвращает позиционный аргумент или спрашивает значение у пользователя
func (c *Cli) argOrPrompt(args []string, i int, prompt string) (string, error) {
	if len(args) > i && args[i] != "" {
		return args[i], nil
	}
	value, err := c.io.ReadInput(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return value, nil
}

func PrintUsage(out iocli.IO) {
	out.Println("AuthKeeper Client")
	out.Println()
	out.Println("Usage:")
	out.Println("  authkeeper [OPTIONS] COMMAND [ARGS]")
	out.Println()
	out.Println("Options:")
	out.Println("  --version             Show version information")
	out.Println("  --server URL          Server URL (default: http://localhost:8080)")
	out.Println("  --db PATH             Path to local session database (default: authkeeper-client.db)")
	out.Println("  --secret SECRET       Account secret (not recommended, use env var or file)")
	out.Println("  --secret-file PATH    Path to file containing the account secret")
	out.Println()
	out.Println("Secret Priority (highest to lowest):")
	out.Println("  1. AUTHKEEPER_SECRET environment variable")
	out.Println("  2. --secret-file (file path)")
	out.Println("  3. --secret (command line)")
	out.Println("  4. Interactive prompt (fallback)")
	out.Println()
	out.Println("Commands:")
	out.Println("  register [-role R] [-first F] [-last L] [identity]   Register new account")
	out.Println("  verify [identity] [code]                             Confirm account with emailed code")
	out.Println("  resend [identity]                                    Send a new verification code")
	out.Println("  login [identity]                                     Login and store tokens")
	out.Println("  refresh                                              Get new access token")
	out.Println("  whoami                                               Show account of current session")
	out.Println("  status                                               Show local session status")
	out.Println("  logout                                               Delete local session")
	out.Println()
	out.Println("Examples:")
	out.Println("  authkeeper register -role DEVELOPER alice@example.com")
	out.Println("  authkeeper verify alice@example.com 123456")
	out.Println("  AUTHKEEPER_SECRET='s3cret!' authkeeper login alice@example.com")
	out.Println("  authkeeper --server https://auth.example.com whoami")
}

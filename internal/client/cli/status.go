package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/authkeeper/internal/client/auth"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Authentication Status ===")
	c.io.Println()

	session, err := c.auth.Session(ctx)
	if err != nil {
		if errors.Is(err, auth.ErrNotLoggedIn) {
			c.io.Println("Status: Not authenticated")
			c.io.Println()
			c.io.Println("Run 'authkeeper login' to authenticate.")
			return nil
		}
		return fmt.Errorf("failed to check authentication: %w", err)
	}

	now := c.now()
	expiresAt := time.Unix(session.ExpiresAt, 0)

	c.io.Println("Status: Authenticated")
	c.io.Printf("Email: %s\n", session.Identity)
	if session.Server != "" {
		c.io.Printf("Server: %s\n", session.Server)
	}
	if len(session.Roles) > 0 {
		c.io.Printf("Roles: %s\n", strings.Join(session.Roles, ", "))
	}
	c.io.Printf("Access token expires: %s\n", expiresAt.UTC().Format(time.RFC3339))

	if session.AccessExpired(now) {
		c.io.Println("⚠️  Access token has expired. It will be refreshed on next use, or run 'authkeeper refresh'.")
	} else {
		c.io.Printf("Time remaining: %s\n", expiresAt.Sub(now).Round(time.Second))
	}

	return nil
}

func (c *Cli) runWhoAmI(ctx context.Context) error {
	me, err := c.auth.WhoAmI(ctx)
	if err != nil {
		return err
	}

	c.io.Printf("Email: %s\n", me.Subject)
	c.io.Printf("Roles: %s\n", strings.Join(me.Roles, ", "))
	c.io.Printf("Access token expires: %s\n", me.ExpiresAt.UTC().Format(time.RFC3339))
	return nil
}

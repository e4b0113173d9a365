package cli

import (
	"context"
	"time"
)

func (c *Cli) runLogin(ctx context.Context, args []string) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	identity, err := c.argOrPrompt(args, 0, "Email: ")
	if err != nil {
		return err
	}

	secret, err := c.getSecret("Secret: ", false)
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("Authenticating...")

	session, err := c.auth.Login(ctx, identity, secret)
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Login successful!")
	c.io.Printf("Email: %s\n", session.Identity)
	c.io.Printf("Access token expires: %s\n", time.Unix(session.ExpiresAt, 0).Format(time.RFC3339))
	c.io.Println()
	c.io.Println("Your session has been saved.")

	return nil
}

func (c *Cli) runRefresh(ctx context.Context) error {
	session, err := c.auth.Refresh(ctx)
	if err != nil {
		return err
	}

	c.io.Println("✓ Access token refreshed")
	c.io.Printf("Access token expires: %s\n", time.Unix(session.ExpiresAt, 0).Format(time.RFC3339))
	return nil
}

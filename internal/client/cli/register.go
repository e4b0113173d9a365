package cli

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/iudanet/authkeeper/internal/client/auth"
)

const defaultRole = "DEVELOPER"

func (c *Cli) runRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	role := fs.String("role", defaultRole, "role tag")
	firstName := fs.String("first", "", "first name")
	lastName := fs.String("last", "", "last name")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("invalid register arguments: %w", err)
	}

	c.io.Println("=== Registration ===")
	c.io.Println()

	identity, err := c.argOrPrompt(fs.Args(), 0, "Email: ")
	if err != nil {
		return err
	}

	secret, err := c.getSecret("Secret (min 6 chars): ", true)
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("Registering account...")

	resp, err := c.auth.Register(ctx, auth.RegisterInput{
		Identity:  identity,
		Secret:    secret,
		FirstName: *firstName,
		LastName:  *lastName,
		Role:      *role,
	})
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Registration successful!")
	c.io.Printf("Account ID: %s\n", resp.AccountID)
	c.io.Printf("Email: %s\n", resp.Identity)
	c.io.Printf("Role: %s\n", *role)
	c.io.Println()
	c.io.Println("A verification code has been sent to your email.")
	c.io.Printf("Run 'authkeeper verify %s <code>' to activate the account.\n", resp.Identity)

	return nil
}

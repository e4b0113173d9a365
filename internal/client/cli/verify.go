package cli

import (
	"context"
)

func (c *Cli) runVerify(ctx context.Context, args []string) error {
	identity, err := c.argOrPrompt(args, 0, "Email: ")
	if err != nil {
		return err
	}
	code, err := c.argOrPrompt(args, 1, "Verification code: ")
	if err != nil {
		return err
	}

	if err := c.auth.Verify(ctx, identity, code); err != nil {
		return err
	}

	c.io.Println("✓ Account verified!")
	c.io.Println("Please run 'authkeeper login' to start using the service.")
	return nil
}

func (c *Cli) runResend(ctx context.Context, args []string) error {
	identity, err := c.argOrPrompt(args, 0, "Email: ")
	if err != nil {
		return err
	}

	if err := c.auth.Resend(ctx, identity); err != nil {
		return err
	}

	c.io.Println("✓ A new verification code has been sent.")
	c.io.Println("The code is valid for 60 minutes.")
	return nil
}

package cli

import (
	"context"
	"fmt"
)

// UnknownCommandError is returned by Run for unsupported commands
type UnknownCommandError struct {
	Command string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command: %s", e.Command)
}

// Run выполняет команду; args не включают имя команды
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return c.runRegister(ctx, args)
	case "verify":
		return c.runVerify(ctx, args)
	case "resend":
		return c.runResend(ctx, args)
	case "login":
		return c.runLogin(ctx, args)
	case "refresh":
		return c.runRefresh(ctx)
	case "whoami":
		return c.runWhoAmI(ctx)
	case "status":
		return c.runStatus(ctx)
	case "logout":
		return c.runLogout(ctx)
	case "help":
		PrintUsage(c.io)
		return nil
	default:
		return &UnknownCommandError{Command: command}
	}
}

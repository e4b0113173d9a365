package main

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/iudanet/authkeeper/internal/server"
	"github.com/iudanet/authkeeper/internal/server/config"
	"github.com/iudanet/authkeeper/internal/server/observability"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	args := os.Args[1:]

	// Show version and exit if requested
	if slices.Contains(args, "-version") || slices.Contains(args, "--version") {
		printVersion()
		os.Exit(0)
	}

	if err := run(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	level, err := observability.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using info\n", err)
	}
	logger := observability.NewLogger(os.Stdout, level, "authkeeper-server", Version)

	if err := observability.InitSentry(cfg.Sentry.DSN, cfg.AppEnv, Version); err != nil {
		logger.Error("failed to init sentry", "error", err)
	}

	ctx := context.Background()

	app, err := server.NewApp(ctx, cfg, logger, Version)
	if err != nil {
		observability.FlushSentry()
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close app", "error", err)
		}
	}()

	return app.Run(ctx)
}

func printVersion() {
	fmt.Printf("AuthKeeper Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}

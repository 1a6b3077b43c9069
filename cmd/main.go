package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/desertthunder/watchlist/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	if err := shared.LoadEnv(); err != nil {
		logger.Warn("failed to load .env", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r := NewRunner(RunnerOpts{Logger: logger})
	if err := rootCommand(r).Run(ctx, os.Args); err != nil {
		logger.Error("application error", "error", err)
		stop()
		os.Exit(exitCode(err))
	}
}

// exitCode maps command errors to process exit codes.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, shared.ErrNotAuthenticated), errors.Is(err, shared.ErrAlreadyAuthenticated),
		errors.Is(err, shared.ErrAuthFailed):
		return 3
	case errors.Is(err, shared.ErrInvalidInput), errors.Is(err, shared.ErrMissingArgument),
		errors.Is(err, shared.ErrInvalidArgument), errors.Is(err, shared.ErrInvalidFlag):
		return 2
	case errors.Is(err, shared.ErrNetwork), errors.Is(err, shared.ErrServiceUnavailable):
		return 4
	default:
		return 1
	}
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/filisonic/easyhr/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	if err := shared.LoadDotEnv(); err != nil {
		logger.Warn("failed to load .env", "error", err)
	}

	runner := NewRunner(RunnerOpts{Logger: logger})
	defer runner.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runner.app().Run(ctx, os.Args); err != nil {
		runner.Close()
		logger.Fatalf("application error: %v", err)
	}
}

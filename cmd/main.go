package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"memescan/internal/application"
	"memescan/pkg/logx"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := application.Run(ctx); err != nil {
		slog.Error("application failed", logx.Error(err))
		cancel()
		os.Exit(1) //nolint:gocritic
	}

	slog.Info("application stopped")
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vaultpass/sharepass-go/internal/config"
	"github.com/vaultpass/sharepass-go/internal/logging"
	"github.com/vaultpass/sharepass-go/internal/server"
)

func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	logging.Setup(os.Stderr, cfg.LogLevel)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, cfg); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

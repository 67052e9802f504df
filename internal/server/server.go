// Package server runs the local web front of the secret-sharing client.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/vaultpass/sharepass-go/internal/client"
	"github.com/vaultpass/sharepass-go/internal/config"
	"github.com/vaultpass/sharepass-go/internal/handler"
	"github.com/vaultpass/sharepass-go/internal/service"
)

const shutdownTimeout = 10 * time.Second

// NewHandler builds the API client, services and router for cfg. The router's
// background work stops when ctx is done.
func NewHandler(ctx context.Context, cfg config.Config) (http.Handler, error) {
	api, err := client.New(cfg.APIBaseURL,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)
	if err != nil {
		return nil, err
	}

	genHandler := handler.NewGeneratorHandler(service.NewGeneratorService(nil))
	secretHandler := handler.NewSecretHandler(service.NewSecretService(api, cfg.PublicBaseURL))

	return handler.NewRouter(ctx, genHandler, secretHandler, handler.RouterConfig{
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}), nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, cfg config.Config) error {
	h, err := NewHandler(ctx, cfg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "api", cfg.APIBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	slog.Info("server stopped")
	return nil
}

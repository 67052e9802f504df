package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/vaultpass/sharepass-go/internal/middleware"
)

// RouterConfig holds the per-IP limit applied to the API routes.
type RouterConfig struct {
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter wires the handlers into a chi router. Background work started by
// the middleware stops when ctx is done.
func NewRouter(ctx context.Context, gen *GeneratorHandler, sec *SecretHandler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst))
		r.Post("/generate", gen.HandleGenerate)
		r.Post("/secrets", sec.HandleCreate)
		r.Get("/secrets/{pwdId}", sec.HandleReveal)
		r.Post("/lookup", sec.HandleLookup)
	})

	return r
}

// Package http assembles the router: public health and metrics endpoints,
// plus the staff API behind request metadata and authentication middleware.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Escana/app-escana01-production-sub000/pkg/platform/httputil"
	"github.com/Escana/app-escana01-production-sub000/pkg/platform/middleware/auth"
	"github.com/Escana/app-escana01-production-sub000/pkg/platform/middleware/requestmeta"
)

// Registrar is implemented by feature handlers that mount their own routes.
type Registrar interface {
	Register(r chi.Router)
}

// ReadyCheck probes one backing dependency for the readiness endpoint.
type ReadyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Config carries everything the router needs.
type Config struct {
	Logger   *slog.Logger
	Auth     auth.ActorResolver
	Handlers []Registrar
	Ready    []ReadyCheck
}

// NewRouter builds the full HTTP surface.
func NewRouter(cfg Config) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(requestmeta.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", readyHandler(logger, cfg.Ready))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireActor(cfg.Auth, logger))
		for _, handler := range cfg.Handlers {
			handler.Register(r)
		}
	})

	return r
}

func readyHandler(logger *slog.Logger, checks []ReadyCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := make(map[string]string, len(checks))
		healthy := true
		for _, check := range checks {
			if err := check.Check(ctx); err != nil {
				logger.WarnContext(ctx, "readiness check failed", "dependency", check.Name, "error", err)
				status[check.Name] = "unavailable"
				healthy = false
				continue
			}
			status[check.Name] = "ok"
		}

		code := http.StatusOK
		if !healthy {
			code = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, code, status)
	}
}

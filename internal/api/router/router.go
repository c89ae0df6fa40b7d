package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/salon-voice-agent/internal/dispatch"
	httpmiddleware "github.com/wolfman30/salon-voice-agent/internal/http/middleware"
	"github.com/wolfman30/salon-voice-agent/pkg/logging"
)

// Pinger reports storage reachability for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds router configuration.
type Config struct {
	Logger         *logging.Logger
	InCallHandler  *dispatch.Handler
	RateLimiter    *httpmiddleware.RateLimiter
	MetricsHandler http.Handler
	DB             Pinger
}

// New creates a new Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck(cfg.DB))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Group(func(incall chi.Router) {
		if cfg.RateLimiter != nil {
			incall.Use(cfg.RateLimiter.Middleware)
		}
		incall.Method(http.MethodPost, "/in-call", cfg.InCallHandler)
	})

	return r
}

// healthCheck always answers 200; storage reachability is reported in the
// body so a dead database degrades the status field instead of the endpoint.
func healthCheck(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]string{"status": "ok"}
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				body["database"] = "unreachable"
			} else {
				body["database"] = "ok"
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}
}

// Package httptransport assembles the public HTTP surface. Handlers stay in
// their domain packages; this router owns the shared middleware chain and the
// operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	communityhandler "rently/internal/community/handler"
	listinghandler "rently/internal/listing/handler"
	"rently/internal/platform/metrics"
	"rently/internal/platform/middleware"
	verificationhandler "rently/internal/verification/handler"
)

// Registrar is implemented by the domain handlers.
type Registrar interface {
	Register(r chi.Router)
}

// Config carries everything the router needs.
type Config struct {
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
	Listings     *listinghandler.Handler
	Communities  *communityhandler.Handler
	Verification *verificationhandler.Handler
	Health       func() error
}

// NewRouter builds the chi router with the platform middleware chain and all
// domain routes mounted.
func NewRouter(cfg Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Metadata)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Latency(cfg.Metrics))

	r.Get("/healthz", handleHealth(cfg.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	for _, h := range []Registrar{cfg.Listings, cfg.Communities, cfg.Verification} {
		h.Register(r)
	}
	return r
}

func handleHealth(check func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

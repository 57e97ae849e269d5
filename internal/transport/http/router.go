// Package httptransport assembles the full HTTP surface: middleware chain,
// module handlers, health, and metrics.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"memberd/internal/member/device"
	memberhandler "memberd/internal/member/handler"
	"memberd/internal/platform/metrics"
	"memberd/internal/platform/middleware"
)

// HealthChecker reports readiness of an external dependency.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps carries everything the router mounts.
type Deps struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Devices *device.Service
	Members *memberhandler.Handler
	// Checks run on /healthz, keyed by dependency name. Nil values are
	// skipped so unconfigured backends do not fail health.
	Checks map[string]HealthChecker
}

// NewRouter wires all endpoints behind the shared middleware chain.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestMeta(deps.Devices))
	r.Use(middleware.Tracing)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.Latency(deps.Metrics))

	deps.Members.Register(r)

	r.Get("/healthz", handleHealth(deps.Checks))
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func handleHealth(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Health stays cheap by bounding each dependency check.
		checkCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := "ok"
		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check.Health(checkCtx); err != nil {
				status = http.StatusServiceUnavailable
				body = name + " unavailable"
				break
			}
		}

		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

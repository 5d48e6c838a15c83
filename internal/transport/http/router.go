package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ssogate/internal/apps"
	"ssogate/internal/platform/middleware"
	"ssogate/internal/transport/http/json"
)

// HealthChecker reports whether the service's dependencies are reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// NewRouter wires the public endpoints with the middleware stack. Auth
// routes live under /auth/{app} behind the app gate; registration of the
// concrete handlers is injected to keep this package free of business
// dependencies.
func NewRouter(registerAuth func(chi.Router), registry *apps.Registry, health HealthChecker, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/auth/{app}", func(ar chi.Router) {
		ar.Use(middleware.ContentTypeJSON)
		ar.Use(AppGate(registry))
		registerAuth(ar)
	})

	r.Get("/healthz", handleHealth(health))
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func handleHealth(health HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if health != nil {
			if err := health.Health(r.Context()); err != nil {
				json.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
				return
			}
		}
		json.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

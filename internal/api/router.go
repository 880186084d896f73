package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/tileboard/internal/auth"
	"github.com/nerrad567/tileboard/internal/panel"
)

// healthCheckTimeout bounds each dependency check in /health.
const healthCheckTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// No auth: monitoring
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		// WebSocket (auth via ticket, validated in handler)
		r.Get("/ws", s.handleWebSocket)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Post("/auth/ws-ticket", s.handleWSTicket)

			r.Route("/states", func(r chi.Router) {
				r.With(s.require(auth.PermStateRead)).Get("/", s.handleListStates)
				r.Route("/{id}", func(r chi.Router) {
					r.With(s.require(auth.PermStateRead)).Get("/", s.handleGetState)
					r.With(s.require(auth.PermStateWrite)).Put("/", s.handleSetState)
					r.With(s.require(auth.PermStateRead)).Get("/history", s.handleGetStateHistory)
				})
			})

			r.Route("/pages", func(r chi.Router) {
				r.With(s.require(auth.PermStateRead)).Get("/", s.handleListPages)
				r.With(s.require(auth.PermStateRead)).Get("/current", s.handleCurrentPage)
				r.With(s.require(auth.PermPageReload)).Post("/reload", s.handleReloadPages)
				r.With(s.require(auth.PermPageNavigate)).Post("/{name}/open", s.handleOpenPage)
			})
		})
	})

	// Browser client for everything outside the API
	r.Handle("/*", panel.Handler(s.cfg.PanelDir))

	return r
}

// handleHealth returns the server health status. Optional dependencies
// that are configured but failing degrade the status without failing it.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		"backend": "disconnected",
	}
	if s.core.Connected() {
		checks["backend"] = "connected"
	}
	if s.commands.Demo() {
		checks["backend"] = "demo"
	}

	status := "ok"
	if s.db != nil {
		checks["database"] = checkDependency(r.Context(), s.db.HealthCheck)
	}
	if s.influx != nil {
		checks["influxdb"] = checkDependency(r.Context(), s.influx.HealthCheck)
	}
	for _, v := range checks {
		if v != "ok" && v != "connected" && v != "demo" {
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  status,
		"version": s.version,
		"page":    s.pages.Current(),
		"checks":  checks,
	})
}

func checkDependency(ctx context.Context, check func(context.Context) error) string {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	if err := check(ctx); err != nil {
		return err.Error()
	}
	return "ok"
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/devices", func(r chi.Router) {
			r.Get("/", s.handleListDevices)

			r.Route("/{name}", func(r chi.Router) {
				r.Get("/", s.handleGetStatus)
				r.Get("/state", s.handleGetState)
				r.Post("/on", s.handleTurnOn)
				r.Post("/off", s.handleTurnOff)
				r.Post("/toggle", s.handleToggle)
				r.Put("/brightness", s.handleSetBrightness)
				r.Put("/color", s.handleSetColor)

				// Native schedule pass-through (Kasa plugs only)
				r.Route("/schedule", func(r chi.Router) {
					r.Get("/", s.handleGetSchedule)
					r.Post("/", s.handleAddScheduleRule)
					r.Put("/enabled", s.handleSetScheduleEnabled)
					r.Delete("/{ruleID}", s.handleDeleteScheduleRule)
				})
			})
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"devices": s.registry.Len(),
	})
}

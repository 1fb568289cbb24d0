/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the SPA frontend

SECURITY NOTE:
  The user identity comes from the URL, not a verified session - the
  hosted deployment sits behind an authenticating proxy that rewrites
  the path. Local development runs open.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/activity/{year}", h.GetYearActivity)
			r.Get("/heatmap/{year}", h.GetYearHeatmap)

			r.Route("/rollups", func(r chi.Router) {
				r.Get("/today", h.GetTodayRollup)
				r.Get("/{date}", h.GetRollup)
			})

			r.Route("/completions", func(r chi.Router) {
				r.Get("/", h.ListCompletions)
				r.Post("/toggle", h.ToggleCompletion)
			})
		})
	})

	return r
}

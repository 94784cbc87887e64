package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes builds the router for the operator API.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Route("/suppression", func(r chi.Router) {
			r.Get("/", h.ListSuppressed)
			r.Post("/", h.CreateSuppression)
			r.Get("/stats", h.SuppressionStats)
			r.Get("/check/{email}", h.CheckSuppression)
			r.Post("/{email}/reactivate", h.ReactivateAddress)
		})

		r.Route("/reputation", func(r chi.Router) {
			r.Get("/current", h.CurrentReputation)
			r.Get("/alerts", h.ReputationAlerts)
			r.Get("/history", h.ReputationHistory)
			r.Post("/refresh", h.RefreshReputation)
			r.Get("/{date}", h.ReputationForDate)
		})

		r.Post("/templates/preview", h.PreviewTemplate)
	})

	return r
}

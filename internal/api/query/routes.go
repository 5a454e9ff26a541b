package query

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers query routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/health", h.Health)
	r.Post("/query", h.Query)
	r.Get("/history", h.History)
	r.Get("/stats", h.Stats)
}

package chat

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers chat routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/chat", func(r chi.Router) {
		r.Post("/sessions", h.CreateSession)
		r.Post("/ask", h.Ask)
		r.Get("/sessions/{id}/history", h.GetHistory)
	})
}

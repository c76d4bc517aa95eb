package calculator

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the documentation page, one GET endpoint per
// operation and POST /chain onto r.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/", h.Docs)

	for _, op := range operations {
		r.Get("/"+op.Name, h.Operation(op))
	}

	r.Post("/chain", h.Chain)
}

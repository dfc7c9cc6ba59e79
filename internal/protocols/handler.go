package protocols

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler serves the protocol library endpoints.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// MountRoutes registers the protocol routes. The router gates the whole
// subtree behind the Pro plan.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	results := Search(q.Get("q"), q.Get("category"))
	writeJSON(w, http.StatusOK, map[string]any{
		"protocols":  results,
		"categories": Categories(),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p, ok := Get(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Protocolo não encontrado."})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

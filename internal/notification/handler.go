package notification

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Handler wires HTTP endpoints over the notification store.
type Handler struct {
	logger    *slog.Logger
	store     *Store
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, store *Store) *Handler {
	return &Handler{logger: logger, store: store, validator: validator.New()}
}

// MountRoutes registers notification routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.add)
	r.Post("/read-all", h.markAllRead)
	r.Post("/{id}/read", h.markRead)
	r.Delete("/{id}", h.delete)
	r.Delete("/", h.clear)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	h.respondCollection(w)
}

type addRequest struct {
	Category Category `json:"type" validate:"required"`
	Title    string   `json:"title" validate:"required"`
	Message  string   `json:"message" validate:"required"`
	Link     string   `json:"link"`
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := h.validator.Struct(req); err != nil || !req.Category.Valid() {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	n, err := h.store.Add(r.Context(), req.Category, req.Title, req.Message, req.Link)
	if err != nil {
		h.logger.Error("add notification", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(n)
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	if err := h.store.MarkRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondMutationError(w, err)
		return
	}
	h.respondCollection(w)
}

func (h *Handler) markAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.store.MarkAllRead(r.Context()); err != nil {
		h.respondMutationError(w, err)
		return
	}
	h.respondCollection(w)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondMutationError(w, err)
		return
	}
	h.respondCollection(w)
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context()); err != nil {
		h.respondMutationError(w, err)
		return
	}
	h.respondCollection(w)
}

func (h *Handler) respondCollection(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"notifications": h.store.List(),
		"unreadCount":   h.store.UnreadCount(),
	})
}

func (h *Handler) respondMutationError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}
	h.logger.Error("notification mutation", slog.Any("error", err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

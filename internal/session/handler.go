package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Authenticator performs the remote calls that establish or amend an
// identity. Implemented by the API client.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (token string, profile *Session, err error)
	AcceptTerms(ctx context.Context) error
}

// ErrInvalidCredentials is returned by Authenticator implementations when
// the remote API rejects the login.
var ErrInvalidCredentials = errors.New("session: invalid credentials")

// Handler wires HTTP endpoints for the identity lifecycle.
type Handler struct {
	logger    *slog.Logger
	manager   *Manager
	auth      Authenticator
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, manager *Manager, auth Authenticator) *Handler {
	return &Handler{
		logger:    logger,
		manager:   manager,
		auth:      auth,
		validator: validator.New(),
	}
}

// MountAuth registers the unauthenticated auth routes.
func (h *Handler) MountAuth(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Post("/refresh", h.handleRefresh)
}

// MountMe registers the authenticated profile routes.
func (h *Handler) MountMe(r chi.Router) {
	r.Get("/", h.handleMe)
	r.Post("/accept-terms", h.handleAcceptTerms)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Requisição inválida.")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Credenciais inválidas.")
		return
	}

	token, profile, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Credenciais inválidas.")
			return
		}
		h.logger.Error("login call", slog.Any("error", err))
		writeError(w, http.StatusBadGateway, "Erro ao realizar login. Tente novamente.")
		return
	}
	if err := h.manager.Login(r.Context(), token, profile); err != nil {
		h.logger.Error("persist credential", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "Erro ao realizar login.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": profile})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Logout(r.Context()); err != nil {
		h.logger.Warn("logout", slog.Any("error", err))
	}
	// Hard navigation back to the entry route.
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.RefreshUser(r.Context()); err != nil {
		if errors.Is(err, ErrNotAuthenticated) {
			writeError(w, http.StatusUnauthorized, "Não autenticado.")
			return
		}
		h.logger.Warn("refresh profile", slog.Any("error", err))
		writeError(w, http.StatusBadGateway, "Erro ao atualizar perfil.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": h.manager.Current()})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := h.manager.Current()
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "Não autenticado.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":          sess,
		"termsRequired": sess.TermsRequired(),
	})
}

// handleAcceptTerms records the consent remotely first and only then
// refreshes the local session: no optimistic local mutation to roll back.
func (h *Handler) handleAcceptTerms(w http.ResponseWriter, r *http.Request) {
	if !h.manager.Authenticated() {
		writeError(w, http.StatusUnauthorized, "Não autenticado.")
		return
	}
	if err := h.auth.AcceptTerms(r.Context()); err != nil {
		h.logger.Warn("accept terms", slog.Any("error", err))
		writeError(w, http.StatusBadGateway, "Erro ao aceitar os termos. Tente novamente.")
		return
	}
	if err := h.manager.RefreshUser(r.Context()); err != nil {
		h.logger.Warn("refresh after terms", slog.Any("error", err))
	}
	writeJSON(w, http.StatusOK, map[string]any{"accepted": true})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

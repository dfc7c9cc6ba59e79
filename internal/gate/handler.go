package gate

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/medipro/console/internal/entitlement"
	"github.com/medipro/console/internal/session"
)

// Handler exposes the plan catalog and the entitlement probe.
type Handler struct {
	logger  *slog.Logger
	manager *session.Manager
}

func NewHandler(logger *slog.Logger, manager *session.Manager) *Handler {
	return &Handler{logger: logger, manager: manager}
}

// MountPlans registers the plan catalog routes. The catalog stays
// reachable while the lapsed lock is engaged.
func (h *Handler) MountPlans(r chi.Router) {
	r.Get("/", h.listPlans)
}

// MountEntitlements registers the entitlement probe routes.
func (h *Handler) MountEntitlements(r chi.Router) {
	r.Get("/check", h.check)
}

type planView struct {
	Plan    entitlement.Tier `json:"plan"`
	Name    string           `json:"name"`
	Rank    int              `json:"rank"`
	Current bool             `json:"current"`
}

func (h *Handler) listPlans(w http.ResponseWriter, r *http.Request) {
	sess := h.manager.Current()
	var current entitlement.Tier
	if sess != nil && sess.Plan != nil {
		current = *sess.Plan
	}
	plans := make([]planView, 0, len(entitlement.Tiers()))
	for _, tier := range entitlement.Tiers() {
		plans = append(plans, planView{
			Plan:    tier,
			Name:    entitlement.DisplayName(tier),
			Rank:    entitlement.RankOf(&tier),
			Current: tier == current,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"plans": plans})
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	required := entitlement.Tier(r.URL.Query().Get("plan"))
	if !required.Valid() {
		writeError(w, http.StatusBadRequest, "Plano desconhecido.")
		return
	}
	sess := h.manager.Current()
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "Não autenticado.")
		return
	}
	writeJSON(w, http.StatusOK, Evaluate(sess, required))
}

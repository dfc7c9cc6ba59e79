package gate

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/medipro/console/internal/entitlement"
	"github.com/medipro/console/internal/session"
)

// Middleware wires entitlement enforcement helpers for HTTP handlers.
// Every guard reads the live session on each request so a login, logout
// or refresh in another handler is visible immediately.
type Middleware struct {
	Manager *session.Manager
	Logger  *slog.Logger
}

// RequireAuth rejects requests without an authenticated session.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Manager.Current() == nil {
			writeError(w, http.StatusUnauthorized, "Não autenticado.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireTier blocks sessions below the required plan tier and answers
// with the denial decision so the caller can render an upgrade prompt.
func (m Middleware) RequireTier(required entitlement.Tier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := m.Manager.Current()
			if sess == nil {
				writeError(w, http.StatusUnauthorized, "Não autenticado.")
				return
			}
			decision := Evaluate(sess, required)
			if !decision.Allowed {
				if m.Logger != nil {
					m.Logger.Info("plan gate denied",
						slog.String("path", r.URL.Path),
						slog.String("required", string(decision.RequiredTier)),
						slog.String("current", string(decision.CurrentTier)))
				}
				writeJSON(w, http.StatusForbidden, decision)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireTerms blocks non-admin sessions that have not accepted the
// terms of use. It runs before the lapsed lock since legal consent is
// collected before any billing concern.
func (m Middleware) RequireTerms(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := m.Manager.Current()
		if sess != nil && sess.TermsRequired() {
			writeJSON(w, http.StatusForbidden, map[string]string{
				"error":  "Você precisa aceitar os termos de uso para continuar.",
				"reason": "terms_required",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LockWhenLapsed blocks every route except the plans page while the
// subscription is lapsed. The plans page stays reachable so the user
// can regularize the billing and leave the locked state.
func (m Middleware) LockWhenLapsed(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := m.Manager.Current()
		if Lapsed(sess) && !isPlansRoute(r.URL.Path) {
			if m.Logger != nil {
				m.Logger.Info("lapsed lock engaged",
					slog.String("path", r.URL.Path),
					slog.String("user", sess.ID))
			}
			writeJSON(w, http.StatusPaymentRequired, map[string]string{
				"error":    "Sua assinatura está inativa. Regularize o pagamento para continuar.",
				"reason":   "subscription_lapsed",
				"plansUrl": PlansPath,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isPlansRoute(path string) bool {
	return path == PlansPath || strings.HasPrefix(path, PlansPath+"/")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

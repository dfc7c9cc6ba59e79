package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/medipro/console/internal/entitlement"
	"github.com/medipro/console/internal/gate"
	"github.com/medipro/console/internal/notification"
	"github.com/medipro/console/internal/protocols"
	"github.com/medipro/console/internal/session"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger              *slog.Logger
	Config              *Config
	SessionHandler      *session.Handler
	NotificationHandler *notification.Handler
	ProtocolsHandler    *protocols.Handler
	GateHandler         *gate.Handler
	Gates               gate.Middleware
}

// NewRouter constructs the chi.Router with console defaults. The
// protected subtree runs behind auth, terms and the lapsed lock, in that
// order. The plans catalog mounts outside the lock on purpose, it is
// where a locked user goes to regularize billing.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", func(r chi.Router) {
		r.Use(LoginRateLimit())
		params.SessionHandler.MountAuth(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(params.Gates.RequireAuth)

		// Reachable while locked or before the terms are accepted.
		r.Route(gate.PlansPath, params.GateHandler.MountPlans)
		r.Route("/me", params.SessionHandler.MountMe)

		r.Group(func(r chi.Router) {
			r.Use(params.Gates.RequireTerms)
			r.Use(params.Gates.LockWhenLapsed)

			r.Route("/entitlements", params.GateHandler.MountEntitlements)
			r.Route("/notifications", params.NotificationHandler.MountRoutes)

			r.Route("/protocols", func(r chi.Router) {
				r.Use(params.Gates.RequireTier(entitlement.TierPro))
				params.ProtocolsHandler.MountRoutes(r)
			})
		})
	})

	return r
}

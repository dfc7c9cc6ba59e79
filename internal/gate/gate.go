// Package gate enforces access on top of the session manager: the feature
// gate projects an entitlement decision for a required tier, and the
// lapsed-subscription lock blocks everything except the billing
// destination when the subscription requires a payment action. Gates hold
// no state of their own; every evaluation reads the live session, so a
// session replacement is reflected immediately.
package gate

import (
	"github.com/medipro/console/internal/entitlement"
	"github.com/medipro/console/internal/session"
)

// PlansPath is the billing/plans destination the gates steer users to, and
// the one route the lapsed lock never blocks.
const PlansPath = "/planos"

// Decision is the outcome of a feature-gate evaluation. It carries enough
// naming for an upgrade prompt.
type Decision struct {
	Allowed      bool             `json:"allowed"`
	RequiredTier entitlement.Tier `json:"requiredPlan"`
	RequiredName string           `json:"requiredPlanName"`
	CurrentTier  entitlement.Tier `json:"currentPlan"`
	CurrentName  string           `json:"currentPlanName"`
	UpgradeURL   string           `json:"upgradeUrl,omitempty"`
}

// Evaluate projects the feature-gate decision for a session against a
// required tier. Administrators always pass. A nil session evaluates at
// the lowest tier.
func Evaluate(sess *session.Session, required entitlement.Tier) Decision {
	var current *entitlement.Tier
	if sess != nil {
		current = sess.Plan
	}
	currentTier := entitlement.TierEssential
	if current != nil {
		currentTier = *current
	}
	decision := Decision{
		RequiredTier: required,
		RequiredName: entitlement.DisplayName(required),
		CurrentTier:  currentTier,
		CurrentName:  entitlement.DisplayName(currentTier),
	}
	if sess != nil && sess.Role.IsAdmin() {
		decision.Allowed = true
		return decision
	}
	if entitlement.HasAccess(current, required) {
		decision.Allowed = true
		return decision
	}
	decision.UpgradeURL = PlansPath
	return decision
}

// Lapsed reports whether the session's subscription should lock the UI.
func Lapsed(sess *session.Session) bool {
	if sess == nil {
		return false
	}
	return entitlement.IsLapsed(sess.Role, sess.PlanStatus)
}

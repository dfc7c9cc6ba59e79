package session

import (
	"time"

	"github.com/medipro/console/internal/entitlement"
	"github.com/medipro/console/internal/shared"
)

// Session is the reconciled in-memory view of the authenticated actor.
// It is replaced wholesale on every change and never mutated in place, so a
// *Session handed out by the manager can be read without locking.
type Session struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  shared.Role `json:"role"`

	// Plan and PlanStatus come from the canonical profile fetch only; a
	// session built from token claims leaves them absent.
	Plan       *entitlement.Tier   `json:"plan,omitempty"`
	PlanStatus *entitlement.Status `json:"planStatus,omitempty"`

	TermsAcceptedAt *time.Time `json:"termsAcceptedAt,omitempty"`
}

// TermsRequired reports whether the user must accept the terms of use
// before proceeding. Administrators are exempt.
func (s *Session) TermsRequired() bool {
	if s == nil {
		return false
	}
	return !s.Role.IsAdmin() && s.TermsAcceptedAt == nil
}

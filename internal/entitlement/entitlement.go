// Package entitlement maps subscription plans onto an ordered hierarchy and
// decides feature access and billing lock-out. Everything here is pure: no
// I/O, no state, so the gating rules stay trivially testable.
package entitlement

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/medipro/console/internal/shared"
)

// Tier is a subscription plan level.
type Tier string

const (
	TierEssential Tier = "ESSENTIAL"
	TierPro       Tier = "PRO"
	TierPremium   Tier = "PREMIUM"
)

// Status is the billing state of a subscription.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusTrialing Status = "TRIALING"
	StatusPastDue  Status = "PAST_DUE"
	StatusCanceled Status = "CANCELED"
)

var tierRanks = map[Tier]int{
	TierEssential: 1,
	TierPro:       2,
	TierPremium:   3,
}

// Valid reports whether the tier is a known plan level.
func (t Tier) Valid() bool {
	_, ok := tierRanks[t]
	return ok
}

// Tiers lists the plan hierarchy from lowest to highest.
func Tiers() []Tier {
	return []Tier{TierEssential, TierPro, TierPremium}
}

// RankOf returns the ordered rank of a tier. An absent or unknown tier maps
// to the lowest rank: accounts without a subscription record are free tier.
func RankOf(tier *Tier) int {
	if tier == nil {
		return tierRanks[TierEssential]
	}
	rank, ok := tierRanks[*tier]
	if !ok {
		return tierRanks[TierEssential]
	}
	return rank
}

// HasAccess reports whether the current tier satisfies the required one.
func HasAccess(current *Tier, required Tier) bool {
	return RankOf(current) >= RankOf(&required)
}

// IsLapsed reports whether the subscription should block access pending a
// payment action. Administrators are always exempt. An absent status is not
// lapsed: accounts with no billing history default to allowed.
func IsLapsed(role shared.Role, status *Status) bool {
	if role.IsAdmin() {
		return false
	}
	if status == nil {
		return false
	}
	return *status != StatusActive && *status != StatusTrialing
}

var titleCaser = cases.Title(language.Und)

// DisplayName renders a tier for user-facing copy, e.g. PRO -> "Pro".
func DisplayName(tier Tier) string {
	return titleCaser.String(strings.ToLower(string(tier)))
}

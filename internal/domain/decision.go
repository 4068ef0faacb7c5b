package domain

// DenialReason explains a negative AccessDecision to the caller. These
// strings surface verbatim in API responses and client lock overlays.
type DenialReason string

const (
	ReasonFreeLimitReached  DenialReason = "free_limit_reached"
	ReasonRequiresUpgrade   DenialReason = "requires_upgrade"
	ReasonUnknownCapability DenialReason = "unknown_capability"
)

// AccessDecision is the single answer shape for every gating query.
// When Allowed is true, Reason is empty and RequiredTier is unset.
type AccessDecision struct {
	Allowed      bool         `json:"allowed"`
	Reason       DenialReason `json:"reason,omitempty"`
	RequiredTier Tier         `json:"required_tier,omitempty"`
	// Remaining is the usage headroom for metered capabilities:
	// Unlimited on paid tiers, >= 0 on free. Zero-valued for pure
	// boolean features, where HasRemaining is false.
	Remaining    int  `json:"remaining,omitempty"`
	HasRemaining bool `json:"-"`
}

// Allow builds a positive decision without usage information.
func Allow() AccessDecision {
	return AccessDecision{Allowed: true}
}

// AllowWithRemaining builds a positive decision carrying usage headroom.
func AllowWithRemaining(remaining int) AccessDecision {
	return AccessDecision{Allowed: true, Remaining: remaining, HasRemaining: true}
}

// Deny builds a negative decision pointing at the minimum tier that
// would grant the capability.
func Deny(reason DenialReason, required Tier) AccessDecision {
	return AccessDecision{Allowed: false, Reason: reason, RequiredTier: required}
}

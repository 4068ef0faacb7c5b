package plan

import (
	"github.com/rs/zerolog"

	"github.com/tellbill/server/internal/domain"
)

// Resolver answers capability questions from the static matrix. Lookups
// are pure and safe to call on every request without caching.
type Resolver struct {
	log zerolog.Logger
}

// NewResolver builds a resolver that logs configuration errors (a
// capability no tier grants) through the given logger.
func NewResolver(log zerolog.Logger) *Resolver {
	return &Resolver{log: log}
}

// HasCapability reports whether the tier grants the capability.
// Unknown capability names fail closed: a typo must deny, never grant.
func (r *Resolver) HasCapability(tier domain.Tier, cap domain.Capability) bool {
	on, ok := CapabilitiesFor(tier).Flag(cap)
	return ok && on
}

// MinimumTierFor returns the lowest tier that grants the capability,
// scanning tiers in ascending order. This relies on the matrix being
// monotone: once a flag turns on it stays on. When no tier grants the
// capability the highest tier is returned and the misconfiguration is
// logged; callers still deny, they just point the user at enterprise.
func (r *Resolver) MinimumTierFor(cap domain.Capability) domain.Tier {
	for _, tier := range domain.TiersAscending {
		if r.HasCapability(tier, cap) {
			return tier
		}
	}
	r.log.Warn().Str("capability", string(cap)).Msg("capability not granted by any tier")
	return domain.TierEnterprise
}

// UpgradeTierFor returns the lowest tier whose limit for the metric is
// unlimited, used to name the plan that lifts a free-tier cap.
func (r *Resolver) UpgradeTierFor(metric domain.Metric) domain.Tier {
	for _, tier := range domain.TiersAscending {
		if CapabilitiesFor(tier).Limit(metric) == domain.Unlimited {
			return tier
		}
	}
	r.log.Warn().Str("metric", string(metric)).Msg("no tier lifts the metric limit")
	return domain.TierEnterprise
}

// Package entitlement keeps the internal plan tier in sync with the
// subscription provider's entitlement state.
package entitlement

import "github.com/tellbill/server/internal/domain"

// tierByEntitlement maps provider entitlement identifiers to tiers.
var tierByEntitlement = map[string]domain.Tier{
	"solo":         domain.TierSolo,
	"professional": domain.TierProfessional,
	"enterprise":   domain.TierEnterprise,
}

// ResolveTier maps a set of active entitlement identifiers to exactly
// one tier: the highest recognized one wins, regardless of order.
// Unrecognized identifiers are ignored; an empty or fully unrecognized
// set resolves to free. Pure function, no hidden state.
func ResolveTier(active []string) domain.Tier {
	tier := domain.TierFree
	for _, id := range active {
		if t, ok := tierByEntitlement[id]; ok && t.Rank() > tier.Rank() {
			tier = t
		}
	}
	return tier
}

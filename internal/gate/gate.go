// Package gate is the single entry point for "can the current user do
// X right now". Every screen and navigator asks here, so the reason a
// feature shows as locked always matches what the server would enforce.
package gate

import (
	"context"

	"github.com/tellbill/server/internal/domain"
	"github.com/tellbill/server/internal/plan"
	"github.com/tellbill/server/internal/usage"
)

// TierSource supplies the current cached tier; in practice the
// entitlement synchronizer.
type TierSource interface {
	Tier() domain.Tier
}

// Gate combines the capability resolver with the usage ledger.
type Gate struct {
	resolver *plan.Resolver
	ledger   *usage.Ledger
	tiers    TierSource
}

// New builds a feature gate.
func New(resolver *plan.Resolver, ledger *usage.Ledger, tiers TierSource) *Gate {
	return &Gate{resolver: resolver, ledger: ledger, tiers: tiers}
}

// CanPerform answers a gating query synchronously from cached state.
// Metered capabilities check tier capability and usage headroom;
// boolean features check tier capability only. Unknown capabilities
// deny: a typo must never grant access.
func (g *Gate) CanPerform(cap domain.Capability) domain.AccessDecision {
	tier := g.tiers.Tier()

	if metric, metered := cap.Metric(); metered {
		allowed, remaining := usage.CheckLimit(tier, metric, g.ledger.Counters().Get(metric))
		if !allowed {
			d := domain.Deny(domain.ReasonFreeLimitReached, g.resolver.UpgradeTierFor(metric))
			d.HasRemaining = true
			return d
		}
		return domain.AllowWithRemaining(remaining)
	}

	if _, known := plan.CapabilitiesFor(tier).Flag(cap); !known {
		return domain.Deny(domain.ReasonUnknownCapability, g.resolver.MinimumTierFor(cap))
	}
	if !g.resolver.HasCapability(tier, cap) {
		return domain.Deny(domain.ReasonRequiresUpgrade, g.resolver.MinimumTierFor(cap))
	}
	return domain.Allow()
}

// Consume performs the mutating path for a metered capability: gate,
// then record the action through the ledger. The decision reflects the
// post-record state. Business denials come back as values, never
// errors. For non-metered capabilities Consume is equivalent to
// CanPerform.
func (g *Gate) Consume(ctx context.Context, cap domain.Capability) domain.AccessDecision {
	metric, metered := cap.Metric()
	if !metered {
		return g.CanPerform(cap)
	}

	if d := g.CanPerform(cap); !d.Allowed {
		return d
	}

	outcome := g.ledger.Record(ctx, metric)
	if outcome.Denied {
		d := domain.Deny(domain.ReasonFreeLimitReached, g.resolver.UpgradeTierFor(metric))
		d.HasRemaining = true
		return d
	}
	// The action already happened; remaining is informational.
	_, remaining := usage.CheckLimit(g.tiers.Tier(), metric, outcome.Counters.Get(metric))
	return domain.AllowWithRemaining(remaining)
}

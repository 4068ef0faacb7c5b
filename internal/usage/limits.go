// Package usage tracks consumption against free-tier limits. The server
// owns the authoritative counters; the Ledger keeps a client-side shadow
// that reconciles to the server on every successful round trip.
package usage

import (
	"github.com/tellbill/server/internal/domain"
	"github.com/tellbill/server/internal/plan"
)

// CheckLimit reports whether one more unit of the metric is allowed at
// the tier, and how much headroom remains. Unlimited tiers always allow
// with remaining = domain.Unlimited; remaining is clamped at zero.
func CheckLimit(tier domain.Tier, metric domain.Metric, used int) (allowed bool, remaining int) {
	limit := plan.CapabilitiesFor(tier).Limit(metric)
	if limit == domain.Unlimited {
		return true, domain.Unlimited
	}
	remaining = limit - used
	if remaining < 0 {
		remaining = 0
	}
	return used < limit, remaining
}

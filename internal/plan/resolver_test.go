package plan

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/tellbill/server/internal/domain"
)

func newTestResolver() *Resolver {
	return NewResolver(zerolog.Nop())
}

func TestHasCapability(t *testing.T) {
	r := newTestResolver()

	tests := []struct {
		tier domain.Tier
		cap  domain.Capability
		want bool
	}{
		{domain.TierFree, domain.CapabilityVoiceInvoicing, true},
		{domain.TierFree, domain.CapabilityProjectManagement, false},
		{domain.TierSolo, domain.CapabilityProjectManagement, true},
		{domain.TierSolo, domain.CapabilityScopeProof, false},
		{domain.TierProfessional, domain.CapabilityScopeProof, true},
		{domain.TierProfessional, domain.CapabilityAPIAccess, false},
		{domain.TierEnterprise, domain.CapabilityAPIAccess, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.HasCapability(tt.tier, tt.cap), "%s / %s", tt.tier, tt.cap)
	}
}

// A capability name nobody defined must deny on every tier, enterprise
// included.
func TestHasCapabilityUnknownFailsClosed(t *testing.T) {
	r := newTestResolver()
	for _, tier := range domain.TiersAscending {
		assert.False(t, r.HasCapability(tier, domain.Capability("teleportation")), "tier %s", tier)
	}
}

func TestMinimumTierFor(t *testing.T) {
	r := newTestResolver()

	assert.Equal(t, domain.TierFree, r.MinimumTierFor(domain.CapabilityVoiceInvoicing))
	assert.Equal(t, domain.TierSolo, r.MinimumTierFor(domain.CapabilityProjectManagement))
	assert.Equal(t, domain.TierSolo, r.MinimumTierFor(domain.CapabilityReceiptScanning))
	assert.Equal(t, domain.TierProfessional, r.MinimumTierFor(domain.CapabilityScopeProof))
	assert.Equal(t, domain.TierProfessional, r.MinimumTierFor(domain.CapabilityAdvancedAnalytics))
	assert.Equal(t, domain.TierEnterprise, r.MinimumTierFor(domain.CapabilityTeamManagement))
}

func TestMinimumTierForUnknownCapability(t *testing.T) {
	r := newTestResolver()
	assert.Equal(t, domain.TierEnterprise, r.MinimumTierFor(domain.Capability("teleportation")))
}

func TestUpgradeTierFor(t *testing.T) {
	r := newTestResolver()
	assert.Equal(t, domain.TierSolo, r.UpgradeTierFor(domain.MetricVoiceRecordings))
	assert.Equal(t, domain.TierSolo, r.UpgradeTierFor(domain.MetricInvoices))
}

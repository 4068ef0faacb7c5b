package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tellbill/server/internal/domain"
)

// limitAtLeast treats Unlimited as larger than any finite cap.
func limitAtLeast(higher, lower int) bool {
	if higher == domain.Unlimited {
		return true
	}
	if lower == domain.Unlimited {
		return false
	}
	return higher >= lower
}

// Upgrading can only add. Every flag set at a tier must stay set at
// every higher tier, and no numeric limit may shrink.
func TestMatrixIsMonotone(t *testing.T) {
	for i := 1; i < len(domain.TiersAscending); i++ {
		lower := CapabilitiesFor(domain.TiersAscending[i-1])
		higher := CapabilitiesFor(domain.TiersAscending[i])
		pair := string(domain.TiersAscending[i-1]) + "->" + string(domain.TiersAscending[i])

		assert.True(t, limitAtLeast(higher.VoiceRecordingsAllowed, lower.VoiceRecordingsAllowed), "%s: voice limit shrank", pair)
		assert.True(t, limitAtLeast(higher.InvoicesAllowed, lower.InvoicesAllowed), "%s: invoice limit shrank", pair)
		assert.True(t, limitAtLeast(higher.ProjectsAllowed, lower.ProjectsAllowed), "%s: project limit shrank", pair)

		for _, cap := range domain.AllCapabilities {
			lowOn, ok := lower.Flag(cap)
			require.True(t, ok, "capability %s has no flag mapping", cap)
			highOn, _ := higher.Flag(cap)
			if lowOn {
				assert.True(t, highOn, "%s: capability %s turned off", pair, cap)
			}
		}
	}
}

func TestCapabilitiesForUnknownTierFallsBackToFree(t *testing.T) {
	got := CapabilitiesFor(domain.Tier("platinum"))
	assert.Equal(t, CapabilitiesFor(domain.TierFree), got)
}

func TestFreeTierRow(t *testing.T) {
	free := CapabilitiesFor(domain.TierFree)
	assert.Equal(t, domain.FreeLifetimeLimit, free.VoiceRecordingsAllowed)
	assert.Equal(t, domain.FreeLifetimeLimit, free.InvoicesAllowed)
	assert.Equal(t, 0, free.ProjectsAllowed)
	assert.False(t, free.ProjectManagement)
	assert.False(t, free.ScopeProof)
}

func TestMeteredCapabilitiesAlwaysFlagOn(t *testing.T) {
	for _, tier := range domain.TiersAscending {
		caps := CapabilitiesFor(tier)
		for _, c := range []domain.Capability{domain.CapabilityVoiceInvoicing, domain.CapabilityInvoiceCreation} {
			on, ok := caps.Flag(c)
			assert.True(t, ok && on, "tier %s: metered capability %s must be on", tier, c)
		}
	}
}

func TestGrantedIsRepeatable(t *testing.T) {
	for _, tier := range domain.TiersAscending {
		first := Granted(tier)
		second := Granted(tier)
		assert.Equal(t, first, second, "tier %s: granted set must be stable", tier)
	}
}

func TestEnterpriseGrantsEverything(t *testing.T) {
	granted := Granted(domain.TierEnterprise)
	assert.Equal(t, domain.AllCapabilities, granted)
}

// Package plan is the single static source of truth for what each
// subscription tier includes. Every other component looks limits and
// feature flags up here; nothing else hardcodes tier comparisons.
package plan

import "github.com/tellbill/server/internal/domain"

// Capabilities describes one tier's limits and feature flags.
// Numeric limits use domain.Unlimited (-1) for "no cap".
type Capabilities struct {
	VoiceRecordingsAllowed int
	InvoicesAllowed        int
	ProjectsAllowed        int

	ProjectManagement bool
	ReceiptScanning   bool
	ScopeProof        bool
	ClientApprovals   bool
	PhotoProof        bool
	ApprovalReminders bool
	AdvancedAnalytics bool
	APIAccess         bool
	CustomBranding    bool
	DedicatedSupport  bool
	TeamManagement    bool
}

// Higher tiers are strict supersets of lower ones: every flag set at a
// tier stays set above it and no numeric limit shrinks. The tests in
// table_test.go enforce this whenever a row changes.
var matrix = map[domain.Tier]Capabilities{
	domain.TierFree: {
		VoiceRecordingsAllowed: domain.FreeLifetimeLimit,
		InvoicesAllowed:        domain.FreeLifetimeLimit,
		ProjectsAllowed:        0,
	},
	domain.TierSolo: {
		VoiceRecordingsAllowed: domain.Unlimited,
		InvoicesAllowed:        domain.Unlimited,
		ProjectsAllowed:        25,

		ProjectManagement: true,
		ReceiptScanning:   true,
		ClientApprovals:   true,
		PhotoProof:        true,
	},
	domain.TierProfessional: {
		VoiceRecordingsAllowed: domain.Unlimited,
		InvoicesAllowed:        domain.Unlimited,
		ProjectsAllowed:        domain.Unlimited,

		ProjectManagement: true,
		ReceiptScanning:   true,
		ClientApprovals:   true,
		PhotoProof:        true,
		ScopeProof:        true,
		ApprovalReminders: true,
		AdvancedAnalytics: true,
		CustomBranding:    true,
	},
	domain.TierEnterprise: {
		VoiceRecordingsAllowed: domain.Unlimited,
		InvoicesAllowed:        domain.Unlimited,
		ProjectsAllowed:        domain.Unlimited,

		ProjectManagement: true,
		ReceiptScanning:   true,
		ClientApprovals:   true,
		PhotoProof:        true,
		ScopeProof:        true,
		ApprovalReminders: true,
		AdvancedAnalytics: true,
		CustomBranding:    true,
		APIAccess:         true,
		DedicatedSupport:  true,
		TeamManagement:    true,
	},
}

// CapabilitiesFor returns the capability record for the tier. It is a
// total function: unknown tiers resolve to the free row so a corrupt
// plan value can only under-permit. The returned struct is a copy.
func CapabilitiesFor(tier domain.Tier) Capabilities {
	if c, ok := matrix[tier]; ok {
		return c
	}
	return matrix[domain.TierFree]
}

// Limit returns the numeric cap for the metric at the tier.
func (c Capabilities) Limit(m domain.Metric) int {
	switch m {
	case domain.MetricVoiceRecordings:
		return c.VoiceRecordingsAllowed
	case domain.MetricInvoices:
		return c.InvoicesAllowed
	}
	return 0
}

// Flag returns the boolean feature flag for the capability and whether
// the capability maps onto a flag at all. Metered capabilities
// (voice invoicing, invoice creation) are always-on and report true.
func (c Capabilities) Flag(cap domain.Capability) (bool, bool) {
	switch cap {
	case domain.CapabilityVoiceInvoicing, domain.CapabilityInvoiceCreation:
		return true, true
	case domain.CapabilityProjectManagement:
		return c.ProjectManagement, true
	case domain.CapabilityReceiptScanning:
		return c.ReceiptScanning, true
	case domain.CapabilityScopeProof:
		return c.ScopeProof, true
	case domain.CapabilityClientApprovals:
		return c.ClientApprovals, true
	case domain.CapabilityPhotoProof:
		return c.PhotoProof, true
	case domain.CapabilityApprovalReminders:
		return c.ApprovalReminders, true
	case domain.CapabilityAdvancedAnalytics:
		return c.AdvancedAnalytics, true
	case domain.CapabilityAPIAccess:
		return c.APIAccess, true
	case domain.CapabilityCustomBranding:
		return c.CustomBranding, true
	case domain.CapabilityDedicatedSupport:
		return c.DedicatedSupport, true
	case domain.CapabilityTeamManagement:
		return c.TeamManagement, true
	}
	return false, false
}

// Granted lists the capabilities enabled at the tier, in the canonical
// order of domain.AllCapabilities.
func Granted(tier domain.Tier) []domain.Capability {
	caps := CapabilitiesFor(tier)
	out := make([]domain.Capability, 0, len(domain.AllCapabilities))
	for _, c := range domain.AllCapabilities {
		if on, ok := caps.Flag(c); ok && on {
			out = append(out, c)
		}
	}
	return out
}

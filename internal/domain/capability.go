package domain

// Capability names a feature or action gated by plan tier. The set is
// closed: gating code switches over these constants and treats any other
// value as unknown (denied).
type Capability string

const (
	// Usage-metered capabilities, available on every tier but subject to
	// the free-tier lifetime caps.
	CapabilityVoiceInvoicing  Capability = "voice_invoicing"
	CapabilityInvoiceCreation Capability = "invoice_creation"

	// Boolean plan features.
	CapabilityProjectManagement Capability = "project_management"
	CapabilityReceiptScanning   Capability = "receipt_scanning"
	CapabilityScopeProof        Capability = "scope_proof"
	CapabilityClientApprovals   Capability = "client_approvals"
	CapabilityPhotoProof        Capability = "photo_proof"
	CapabilityApprovalReminders Capability = "approval_reminders"
	CapabilityAdvancedAnalytics Capability = "advanced_analytics"
	CapabilityAPIAccess         Capability = "api_access"
	CapabilityCustomBranding    Capability = "custom_branding"
	CapabilityDedicatedSupport  Capability = "dedicated_support"
	CapabilityTeamManagement    Capability = "team_management"
)

// AllCapabilities lists every known capability.
var AllCapabilities = []Capability{
	CapabilityVoiceInvoicing,
	CapabilityInvoiceCreation,
	CapabilityProjectManagement,
	CapabilityReceiptScanning,
	CapabilityScopeProof,
	CapabilityClientApprovals,
	CapabilityPhotoProof,
	CapabilityApprovalReminders,
	CapabilityAdvancedAnalytics,
	CapabilityAPIAccess,
	CapabilityCustomBranding,
	CapabilityDedicatedSupport,
	CapabilityTeamManagement,
}

// Metric returns the usage metric consumed by the capability, if any.
func (c Capability) Metric() (Metric, bool) {
	switch c {
	case CapabilityVoiceInvoicing:
		return MetricVoiceRecordings, true
	case CapabilityInvoiceCreation:
		return MetricInvoices, true
	}
	return "", false
}

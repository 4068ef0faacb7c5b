package domain

// Unlimited marks a limit or remaining count with no cap.
const Unlimited = -1

// FreeLifetimeLimit is the per-metric lifetime cap on the free tier.
const FreeLifetimeLimit = 3

// Metric identifies a usage counter consumed by a user-facing action.
type Metric string

const (
	MetricVoiceRecordings Metric = "voice_recording"
	MetricInvoices        Metric = "invoice_creation"
)

// ParseMetric maps an action-type string from the wire to a metric.
func ParseMetric(s string) (Metric, bool) {
	switch Metric(s) {
	case MetricVoiceRecordings:
		return MetricVoiceRecordings, true
	case MetricInvoices:
		return MetricInvoices, true
	}
	return "", false
}

// UsageCounters holds a user's lifetime usage. The server copy is
// authoritative; clients hold a shadow that may run ahead of it while
// offline. Counters only ever grow, except through an administrative
// reset.
type UsageCounters struct {
	VoiceRecordingsUsed int `json:"voice_recordings_used"`
	InvoicesCreated     int `json:"invoices_created"`
}

// Get returns the counter value for the metric.
func (c UsageCounters) Get(m Metric) int {
	switch m {
	case MetricVoiceRecordings:
		return c.VoiceRecordingsUsed
	case MetricInvoices:
		return c.InvoicesCreated
	}
	return 0
}

// Add returns a copy with the metric incremented by n (never below zero).
func (c UsageCounters) Add(m Metric, n int) UsageCounters {
	if n < 0 {
		n = 0
	}
	switch m {
	case MetricVoiceRecordings:
		c.VoiceRecordingsUsed += n
	case MetricInvoices:
		c.InvoicesCreated += n
	}
	return c
}

// UsageReport is the authoritative answer from the usage API for one
// recorded action.
type UsageReport struct {
	Counters      UsageCounters
	Plan          Tier
	Remaining     int // Unlimited on paid tiers
	LimitExceeded bool
}

package domain

import "testing"

func TestTierOrdering(t *testing.T) {
	for i := 1; i < len(TiersAscending); i++ {
		lower, higher := TiersAscending[i-1], TiersAscending[i]
		if !higher.AtLeast(lower) {
			t.Errorf("%s should be at least %s", higher, lower)
		}
		if lower.AtLeast(higher) {
			t.Errorf("%s should not be at least %s", lower, higher)
		}
	}
}

func TestParseTier(t *testing.T) {
	tests := []struct {
		in   string
		want Tier
	}{
		{"free", TierFree},
		{"solo", TierSolo},
		{"professional", TierProfessional},
		{"enterprise", TierEnterprise},
		{"", TierFree},
		{"pro", TierFree},
		{"ENTERPRISE", TierFree},
	}
	for _, tt := range tests {
		if got := ParseTier(tt.in); got != tt.want {
			t.Errorf("ParseTier(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestUnknownTierRanksBelowFree(t *testing.T) {
	if Tier("platinum").Rank() >= TierFree.Rank() {
		t.Error("unknown tier must rank below free")
	}
	if Tier("platinum").AtLeast(TierFree) {
		t.Error("unknown tier must not grant free access")
	}
}

func TestUsageCountersGetAdd(t *testing.T) {
	c := UsageCounters{VoiceRecordingsUsed: 1, InvoicesCreated: 2}
	if got := c.Get(MetricVoiceRecordings); got != 1 {
		t.Errorf("Get(voice) = %d", got)
	}
	if got := c.Get(MetricInvoices); got != 2 {
		t.Errorf("Get(invoices) = %d", got)
	}
	if got := c.Get(Metric("bogus")); got != 0 {
		t.Errorf("Get(bogus) = %d", got)
	}

	c = c.Add(MetricInvoices, 3)
	if c.InvoicesCreated != 5 {
		t.Errorf("InvoicesCreated = %d, want 5", c.InvoicesCreated)
	}
	c = c.Add(MetricInvoices, -4)
	if c.InvoicesCreated != 5 {
		t.Errorf("negative add must be ignored, got %d", c.InvoicesCreated)
	}
}

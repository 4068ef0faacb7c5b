package gate

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/tellbill/server/internal/domain"
	"github.com/tellbill/server/internal/plan"
	"github.com/tellbill/server/internal/usage"
)

type fixedTier domain.Tier

func (f fixedTier) Tier() domain.Tier { return domain.Tier(f) }

type fakeReporter struct {
	report domain.UsageReport
	err    error
	calls  int
}

func (f *fakeReporter) Report(ctx context.Context, metric domain.Metric) (domain.UsageReport, error) {
	f.calls++
	return f.report, f.err
}

func newGate(tier domain.Tier, rep usage.Reporter) (*Gate, *usage.Ledger) {
	ledger := usage.NewLedger(rep, zerolog.Nop())
	g := New(plan.NewResolver(zerolog.Nop()), ledger, fixedTier(tier))
	return g, ledger
}

func TestCanPerformMeteredWithinLimit(t *testing.T) {
	g, ledger := newGate(domain.TierFree, &fakeReporter{})
	ledger.Seed(domain.UsageCounters{InvoicesCreated: 2})

	d := g.CanPerform(domain.CapabilityInvoiceCreation)

	assert.True(t, d.Allowed)
	assert.True(t, d.HasRemaining)
	assert.Equal(t, 1, d.Remaining)
}

func TestCanPerformMeteredAtLimit(t *testing.T) {
	g, ledger := newGate(domain.TierFree, &fakeReporter{})
	ledger.Seed(domain.UsageCounters{InvoicesCreated: 3})

	d := g.CanPerform(domain.CapabilityInvoiceCreation)

	assert.False(t, d.Allowed)
	assert.Equal(t, domain.ReasonFreeLimitReached, d.Reason)
	assert.Equal(t, domain.TierSolo, d.RequiredTier)
	assert.Equal(t, 0, d.Remaining)
}

func TestCanPerformMeteredUnlimitedOnPaid(t *testing.T) {
	g, ledger := newGate(domain.TierSolo, &fakeReporter{})
	ledger.Seed(domain.UsageCounters{InvoicesCreated: 5000})

	d := g.CanPerform(domain.CapabilityInvoiceCreation)

	assert.True(t, d.Allowed)
	assert.Equal(t, domain.Unlimited, d.Remaining)
}

func TestCanPerformBooleanFeature(t *testing.T) {
	g, _ := newGate(domain.TierSolo, &fakeReporter{})

	d := g.CanPerform(domain.CapabilityScopeProof)
	assert.False(t, d.Allowed)
	assert.Equal(t, domain.ReasonRequiresUpgrade, d.Reason)
	assert.Equal(t, domain.TierProfessional, d.RequiredTier)
	assert.False(t, d.HasRemaining)

	g, _ = newGate(domain.TierProfessional, &fakeReporter{})
	d = g.CanPerform(domain.CapabilityScopeProof)
	assert.True(t, d.Allowed)
}

func TestCanPerformUnknownCapabilityDenies(t *testing.T) {
	g, _ := newGate(domain.TierEnterprise, &fakeReporter{})

	d := g.CanPerform(domain.Capability("time_travel"))

	assert.False(t, d.Allowed)
	assert.Equal(t, domain.ReasonUnknownCapability, d.Reason)
}

func TestConsumeRecordsAndReturnsRemaining(t *testing.T) {
	rep := &fakeReporter{report: domain.UsageReport{
		Counters: domain.UsageCounters{InvoicesCreated: 1},
		Plan:     domain.TierFree,
	}}
	g, _ := newGate(domain.TierFree, rep)

	d := g.Consume(context.Background(), domain.CapabilityInvoiceCreation)

	assert.True(t, d.Allowed)
	assert.Equal(t, 2, d.Remaining)
	assert.Equal(t, 1, rep.calls)
}

// A local check can pass on stale counters while the server already sees
// the limit reached. The server's denial must win, and the shadow must
// end up synced to the server's numbers.
func TestConsumeServerDenialWins(t *testing.T) {
	rep := &fakeReporter{report: domain.UsageReport{
		Counters:      domain.UsageCounters{InvoicesCreated: 3},
		Plan:          domain.TierFree,
		LimitExceeded: true,
	}}
	g, ledger := newGate(domain.TierFree, rep)
	ledger.Seed(domain.UsageCounters{InvoicesCreated: 1})

	d := g.Consume(context.Background(), domain.CapabilityInvoiceCreation)

	assert.False(t, d.Allowed)
	assert.Equal(t, domain.ReasonFreeLimitReached, d.Reason)
	assert.Equal(t, domain.TierSolo, d.RequiredTier)
	assert.Equal(t, 3, ledger.Counters().InvoicesCreated)
}

func TestConsumeDeniedLocallySkipsRecord(t *testing.T) {
	rep := &fakeReporter{}
	g, ledger := newGate(domain.TierFree, rep)
	ledger.Seed(domain.UsageCounters{VoiceRecordingsUsed: 3})

	d := g.Consume(context.Background(), domain.CapabilityVoiceInvoicing)

	assert.False(t, d.Allowed)
	assert.Equal(t, 0, rep.calls, "denied action must not be reported")
}

func TestConsumeOfflineProceedsOptimistically(t *testing.T) {
	rep := &fakeReporter{err: errors.New("network down")}
	g, ledger := newGate(domain.TierFree, rep)
	ledger.Seed(domain.UsageCounters{InvoicesCreated: 1})

	d := g.Consume(context.Background(), domain.CapabilityInvoiceCreation)

	assert.True(t, d.Allowed, "outage must not block the user")
	assert.Equal(t, 1, d.Remaining)
	assert.Equal(t, 2, ledger.Counters().InvoicesCreated)
}

func TestConsumeBooleanFeatureDoesNotRecord(t *testing.T) {
	rep := &fakeReporter{}
	g, _ := newGate(domain.TierEnterprise, rep)

	d := g.Consume(context.Background(), domain.CapabilityAPIAccess)

	assert.True(t, d.Allowed)
	assert.Equal(t, 0, rep.calls)
}

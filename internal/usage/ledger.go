package usage

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tellbill/server/internal/domain"
)

// Reporter reports a consumed action to the authoritative usage API and
// returns the server's view of the counters. Implementations return an
// error only for transport-level failures; an over-limit answer is a
// normal report with LimitExceeded set.
type Reporter interface {
	Report(ctx context.Context, metric domain.Metric) (domain.UsageReport, error)
}

// Ledger is the client-side shadow of a user's usage counters. It keeps
// the last server-confirmed values separate from optimistic pending
// increments recorded while the server was unreachable, so the
// reconciliation point stays observable: any successful report replaces
// the confirmed state wholesale and drops the pending overlay.
//
// The confirmed counters only move through server responses; pending
// only grows. The combined shadow therefore never decreases across a
// sequence of Record calls.
type Ledger struct {
	reporter Reporter
	log      zerolog.Logger

	mu        sync.Mutex
	confirmed domain.UsageCounters
	pending   map[domain.Metric]int
}

// NewLedger builds a ledger around the given reporter.
func NewLedger(reporter Reporter, log zerolog.Logger) *Ledger {
	return &Ledger{
		reporter: reporter,
		log:      log,
		pending:  make(map[domain.Metric]int),
	}
}

// Seed replaces the confirmed counters with a server-fetched snapshot,
// e.g. from the entitlements endpoint at session start. Server wins:
// any pending drift is discarded.
func (l *Ledger) Seed(c domain.UsageCounters) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.confirmed = c
	l.pending = make(map[domain.Metric]int)
}

// Counters returns the shadow view: confirmed values plus any pending
// optimistic increments.
func (l *Ledger) Counters() domain.UsageCounters {
	l.mu.Lock()
	defer l.mu.Unlock()
	c := l.confirmed
	for m, n := range l.pending {
		c = c.Add(m, n)
	}
	return c
}

// Pending returns the optimistic increment outstanding for the metric.
func (l *Ledger) Pending(metric domain.Metric) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending[metric]
}

// RecordOutcome is the result of one Record call.
type RecordOutcome struct {
	// Counters is the shadow state after the call.
	Counters domain.UsageCounters
	// Denied is true when the server answered that the limit is
	// reached; the counters above are still synced to its values.
	Denied bool
	// Synced is true when the server confirmed this write; false means
	// the ledger fell back to an optimistic local increment.
	Synced bool
}

// Record reports one consumed action. On a successful round trip the
// server's counters replace the shadow entirely, correcting any local
// drift. On failure (network, server error, missing credential) the
// metric is incremented locally by exactly one and the action proceeds:
// a transient outage must not block the user. The drift is reconciled
// by the next successful report.
func (l *Ledger) Record(ctx context.Context, metric domain.Metric) RecordOutcome {
	report, err := l.reporter.Report(ctx, metric)

	l.mu.Lock()
	defer l.mu.Unlock()

	if err != nil {
		l.pending[metric]++
		l.log.Debug().Err(err).Str("metric", string(metric)).Msg("usage report failed, recorded optimistically")
		c := l.confirmed
		for m, n := range l.pending {
			c = c.Add(m, n)
		}
		return RecordOutcome{Counters: c}
	}

	// Server wins: replace the whole shadow, including pending drift.
	l.confirmed = report.Counters
	l.pending = make(map[domain.Metric]int)
	return RecordOutcome{
		Counters: l.confirmed,
		Denied:   report.LimitExceeded,
		Synced:   true,
	}
}

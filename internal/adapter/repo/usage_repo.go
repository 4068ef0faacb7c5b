package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tellbill/server/internal/domain"
	"github.com/tellbill/server/internal/infra"
	"github.com/tellbill/server/internal/sqlinline"
)

// UsageRepositoryPG implements domain.UsageRepository. Counters are
// lifetime values: the increment path only ever adds, and the only
// write that lowers a counter is the administrative Reset.
type UsageRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewUsageRepository creates a new UsageRepositoryPG.
func NewUsageRepository(sql infra.SQLExecutor) *UsageRepositoryPG {
	return &UsageRepositoryPG{sql: sql}
}

// Get returns the user's lifetime counters; absent rows read as zero.
func (r *UsageRepositoryPG) Get(ctx context.Context, userID string) (domain.UsageCounters, error) {
	var c domain.UsageCounters
	row := r.sql.QueryRow(ctx, sqlinline.QSelectUsageCounters, userID)
	if err := row.Scan(&c.VoiceRecordingsUsed, &c.InvoicesCreated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UsageCounters{}, nil
		}
		return domain.UsageCounters{}, err
	}
	return c, nil
}

// Increment adds one to the metric via a capped upsert; the limit is
// enforced inside the statement so the check and the add cannot race.
// When the cap predicate fails the statement returns no row; the
// counters are re-read and reported back with applied = false. The
// upsert creates the row on first use.
func (r *UsageRepositoryPG) Increment(ctx context.Context, userID string, metric domain.Metric, limit int) (domain.UsageCounters, bool, error) {
	var query string
	switch metric {
	case domain.MetricVoiceRecordings:
		query = sqlinline.QIncrementVoiceRecordings
	case domain.MetricInvoices:
		query = sqlinline.QIncrementInvoices
	default:
		return domain.UsageCounters{}, false, fmt.Errorf("%w: %q", domain.ErrUnknownMetric, metric)
	}

	var c domain.UsageCounters
	row := r.sql.QueryRow(ctx, query, userID, limit)
	if err := row.Scan(&c.VoiceRecordingsUsed, &c.InvoicesCreated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c, err = r.Get(ctx, userID)
			return c, false, err
		}
		return domain.UsageCounters{}, false, err
	}
	return c, true, nil
}

// Reset zeroes the counters. Administrative path only, reached through
// the planctl CLI.
func (r *UsageRepositoryPG) Reset(ctx context.Context, userID string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QResetUsageCounters, userID)
	return err
}

var _ domain.UsageRepository = (*UsageRepositoryPG)(nil)

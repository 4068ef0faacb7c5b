package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tellbill/server/internal/domain"
	"github.com/tellbill/server/internal/infra"
	"github.com/tellbill/server/internal/sqlinline"
)

// BillingRepositoryPG records plan verification events for audit.
type BillingRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewBillingRepository creates a new BillingRepositoryPG.
func NewBillingRepository(sql infra.SQLExecutor) *BillingRepositoryPG {
	return &BillingRepositoryPG{sql: sql}
}

// RecordVerification stores the outcome of one server-side entitlement
// verification: the plan we resolved, which path triggered it ("api",
// "reconcile"), the client's store receipt when one was sent, and the
// raw entitlement identifiers. An empty receipt stores as null.
func (r *BillingRepositoryPG) RecordVerification(ctx context.Context, userID string, plan domain.Tier, source, receipt string, entitlements []string) error {
	raw, err := json.Marshal(entitlements)
	if err != nil {
		return err
	}
	_, err = r.sql.Exec(ctx, sqlinline.QInsertPlanVerification, userID, string(plan), source, receipt, raw)
	return err
}

// Verification is one historical plan verification event.
type Verification struct {
	Plan       domain.Tier
	Source     string
	VerifiedAt time.Time
}

// LastVerification returns the most recent verification for the user,
// or domain.ErrNotFound when none exists.
func (r *BillingRepositoryPG) LastVerification(ctx context.Context, userID string) (*Verification, error) {
	var v Verification
	var plan string
	row := r.sql.QueryRow(ctx, sqlinline.QSelectLastPlanVerification, userID)
	if err := row.Scan(&plan, &v.Source, &v.VerifiedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	v.Plan = domain.ParseTier(plan)
	return &v, nil
}

package domain

import (
	"context"
	"time"
)

// UserRepository defines access methods for users.
type UserRepository interface {
	UpsertBySubject(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	SetPlan(ctx context.Context, userID string, plan Tier) error
	// ListPaidSince returns users on a paid plan whose entitlements were
	// last verified before the cutoff; used by the reconciliation worker.
	ListPaidSince(ctx context.Context, verifiedBefore time.Time, limit int) ([]User, error)
}

// UsageRepository persists the authoritative lifetime usage counters.
type UsageRepository interface {
	Get(ctx context.Context, userID string) (UsageCounters, error)
	// Increment adds one to the metric unless the counter already sits at
	// limit, and returns the resulting counters plus whether the add was
	// applied. Check and add are a single atomic operation so concurrent
	// callers cannot push a counter past the limit. A limit of Unlimited
	// always applies. It never decrements.
	Increment(ctx context.Context, userID string, metric Metric, limit int) (UsageCounters, bool, error)
	Reset(ctx context.Context, userID string) error
}

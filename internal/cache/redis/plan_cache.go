// Package rediscache persists resolved plan tiers in Redis so gateway
// processes can answer gating queries while the database or billing
// provider is unreachable.
package rediscache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tellbill/server/internal/domain"
)

// PlanCache stores the resolved tier per user with a TTL.
type PlanCache struct {
	rdb   *redis.Client
	keyNS string
	ttl   time.Duration
}

// NewPlanCache builds a cache. Empty prefix and non-positive TTL get
// sensible defaults.
func NewPlanCache(rdb *redis.Client, keyPrefix string, ttl time.Duration) *PlanCache {
	if keyPrefix == "" {
		keyPrefix = "tellbill:plan:"
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &PlanCache{rdb: rdb, keyNS: keyPrefix, ttl: ttl}
}

func (c *PlanCache) key(userID string) string { return c.keyNS + userID }

// SaveTier writes the tier for the user.
func (c *PlanCache) SaveTier(ctx context.Context, userID string, tier domain.Tier) error {
	return c.rdb.Set(ctx, c.key(userID), string(tier), c.ttl).Err()
}

// LoadTier reads the cached tier. A miss is not an error.
func (c *PlanCache) LoadTier(ctx context.Context, userID string) (domain.Tier, bool, error) {
	val, err := c.rdb.Get(ctx, c.key(userID)).Result()
	if err == redis.Nil {
		return domain.TierFree, false, nil
	}
	if err != nil {
		return domain.TierFree, false, err
	}
	return domain.ParseTier(val), true, nil
}

// Invalidate drops the cached tier, forcing the next read through to
// the database.
func (c *PlanCache) Invalidate(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, c.key(userID)).Err()
}

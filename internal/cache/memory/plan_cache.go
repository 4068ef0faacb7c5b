// Package memorycache is the single-node fallback for the plan cache
// when Redis is not configured.
package memorycache

import (
	"context"
	"sync"
	"time"

	"github.com/tellbill/server/internal/domain"
)

// PlanCache is an in-memory tier cache with TTL.
type PlanCache struct {
	mu     sync.Mutex
	ttl    time.Duration
	data   map[string]item
	closed chan struct{}
}

type item struct {
	tier domain.Tier
	exp  time.Time
}

// NewPlanCache creates an in-memory plan cache. If ttl <= 0, a default
// of 15 minutes is used. A background goroutine prunes expired entries
// every minute.
func NewPlanCache(ttl time.Duration) *PlanCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	c := &PlanCache{ttl: ttl, data: make(map[string]item), closed: make(chan struct{})}
	go c.cleanupLoop()
	return c
}

// SaveTier stores the tier for the user.
func (c *PlanCache) SaveTier(ctx context.Context, userID string, tier domain.Tier) error {
	_ = ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[userID] = item{tier: tier, exp: time.Now().Add(c.ttl)}
	return nil
}

// LoadTier reads the cached tier. Expired entries miss.
func (c *PlanCache) LoadTier(ctx context.Context, userID string) (domain.Tier, bool, error) {
	_ = ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.data[userID]
	if !ok {
		return domain.TierFree, false, nil
	}
	if time.Now().After(it.exp) {
		delete(c.data, userID)
		return domain.TierFree, false, nil
	}
	return it.tier, true, nil
}

// Invalidate drops the cached tier for the user.
func (c *PlanCache) Invalidate(ctx context.Context, userID string) error {
	_ = ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, userID)
	return nil
}

func (c *PlanCache) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.closed:
			return
		}
	}
}

func (c *PlanCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for k, v := range c.data {
		if now.After(v.exp) {
			delete(c.data, k)
		}
	}
}

// Close stops the background cleanup goroutine.
func (c *PlanCache) Close() error {
	close(c.closed)
	return nil
}

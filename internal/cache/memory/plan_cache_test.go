package memorycache

import (
	"context"
	"testing"
	"time"

	"github.com/tellbill/server/internal/domain"
)

func TestPlanCacheRoundTrip(t *testing.T) {
	c := NewPlanCache(time.Minute)
	defer c.Close()
	ctx := context.Background()

	if _, ok, _ := c.LoadTier(ctx, "u1"); ok {
		t.Fatal("unexpected hit on empty cache")
	}

	if err := c.SaveTier(ctx, "u1", domain.TierProfessional); err != nil {
		t.Fatalf("SaveTier: %v", err)
	}
	tier, ok, err := c.LoadTier(ctx, "u1")
	if err != nil || !ok {
		t.Fatalf("LoadTier: ok=%v err=%v", ok, err)
	}
	if tier != domain.TierProfessional {
		t.Errorf("tier = %s", tier)
	}

	if err := c.Invalidate(ctx, "u1"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok, _ := c.LoadTier(ctx, "u1"); ok {
		t.Fatal("expected miss after invalidation")
	}
}

func TestPlanCacheExpiry(t *testing.T) {
	c := NewPlanCache(5 * time.Millisecond)
	defer c.Close()
	ctx := context.Background()

	_ = c.SaveTier(ctx, "u1", domain.TierSolo)
	time.Sleep(10 * time.Millisecond)
	if _, ok, _ := c.LoadTier(ctx, "u1"); ok {
		t.Fatal("expected expired entry to miss")
	}
}

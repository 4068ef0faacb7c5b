package infra

import (
	"testing"
	"time"
)

func TestLoadConfigRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("LoadConfig() expected error when DATABASE_URL is missing")
	}
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/tellbill")
	t.Setenv("JWT_SECRET", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("LoadConfig() expected error when JWT_SECRET is missing")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/tellbill")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "")
	t.Setenv("RECONCILE_CRON", "")
	t.Setenv("PLAN_CACHE_TTL_MINUTES", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.ReconcileSpec != "@every 6h" {
		t.Fatalf("ReconcileSpec = %q, want @every 6h", cfg.ReconcileSpec)
	}
	if cfg.PlanCacheTTL != 15*time.Minute {
		t.Fatalf("PlanCacheTTL = %v, want 15m", cfg.PlanCacheTTL)
	}
	if cfg.RevenueCatBaseURL == "" {
		t.Fatalf("RevenueCatBaseURL should have a default")
	}
}

func TestLoadConfigCORSOrigins(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/tellbill")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://app.tellbill.com , https://staging.tellbill.com ,")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() unexpected error: %v", err)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("origins = %v, want 2 entries", cfg.CORSAllowedOrigins)
	}
	if cfg.CORSAllowedOrigins[0] != "https://app.tellbill.com" {
		t.Fatalf("first origin = %q", cfg.CORSAllowedOrigins[0])
	}
}

func TestGetEnvIntFallbackOnGarbage(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")
	if got := getEnvInt("RATE_LIMIT_PER_MINUTE", 60); got != 60 {
		t.Fatalf("getEnvInt() = %d, want fallback 60", got)
	}
}

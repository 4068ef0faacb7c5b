package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/tellbill/server/internal/adapter/repo"
	rediscache "github.com/tellbill/server/internal/cache/redis"
	"github.com/tellbill/server/internal/domain"
	"github.com/tellbill/server/internal/entitlement"
	"github.com/tellbill/server/internal/infra"
	"github.com/tellbill/server/internal/providers/revenuecat"
)

// The worker periodically re-verifies paid users against the billing
// provider. A lapsed subscription the mobile client never reported
// (uninstall, refund, chargeback) is caught here and the stored plan
// downgraded, which the API picks up on the next cache miss.
func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	if cfg.RevenueCatAPIKey == "" {
		logger.Fatal().Msg("REVENUECAT_API_KEY is required for the reconciliation worker")
	}

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	runner := infra.NewSQLRunner(dbpool, logger)
	users := repo.NewUserRepository(runner)
	billing := repo.NewBillingRepository(runner)

	client, err := revenuecat.NewClient(revenuecat.Options{
		APIKey:  cfg.RevenueCatAPIKey,
		BaseURL: cfg.RevenueCatBaseURL,
		Logger:  &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build revenuecat client")
	}

	var plans *rediscache.PlanCache
	rdb, err := infra.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, skipping cache invalidation")
	}
	if rdb != nil {
		plans = rediscache.NewPlanCache(rdb, "", cfg.PlanCacheTTL)
	}

	job := func() {
		runCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		reconcile(runCtx, logger, cfg, users, billing, client, plans)
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.ReconcileSpec, job); err != nil {
		logger.Fatal().Err(err).Str("spec", cfg.ReconcileSpec).Msg("invalid reconcile schedule")
	}
	c.Start()
	logger.Info().Str("spec", cfg.ReconcileSpec).Msg("reconciliation worker started")

	// One pass at startup so a long cron interval does not delay the
	// first reconciliation after a deploy.
	job()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	<-c.Stop().Done()
	logger.Info().Msg("worker stopped")
}

func reconcile(
	ctx context.Context,
	logger infra.Logger,
	cfg *infra.Config,
	users domain.UserRepository,
	billing *repo.BillingRepositoryPG,
	client *revenuecat.Client,
	plans *rediscache.PlanCache,
) {
	cutoff := time.Now().Add(-cfg.ReconcileMaxAge)
	stale, err := users.ListPaidSince(ctx, cutoff, cfg.ReconcileBatch)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list users for reconciliation")
		return
	}
	if len(stale) == 0 {
		logger.Debug().Msg("no users due for reconciliation")
		return
	}

	var checked, downgraded int
	for _, user := range stale {
		if ctx.Err() != nil {
			return
		}

		record, err := client.Subscriber(ctx, user.Subject)
		if err != nil {
			if errors.Is(err, revenuecat.ErrSubscriberNotFound) {
				record = domain.EntitlementRecord{}
			} else {
				// Provider trouble is not evidence of a lapsed plan.
				// Skip and retry on the next run.
				logger.Warn().Err(err).Str("user_id", user.ID).Msg("subscriber fetch failed")
				continue
			}
		}
		checked++

		tier := entitlement.ResolveTier(record.Active)
		if err := billing.RecordVerification(ctx, user.ID, tier, "reconcile", "", record.Active); err != nil {
			logger.Warn().Err(err).Str("user_id", user.ID).Msg("verification audit write failed")
		}
		if tier == user.Plan {
			continue
		}

		if err := users.SetPlan(ctx, user.ID, tier); err != nil {
			logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to update plan")
			continue
		}
		if plans != nil {
			if err := plans.Invalidate(ctx, user.ID); err != nil {
				logger.Debug().Err(err).Str("user_id", user.ID).Msg("plan cache invalidation failed")
			}
		}
		if tier.Rank() < user.Plan.Rank() {
			downgraded++
		}
		logger.Info().
			Str("user_id", user.ID).
			Str("from", string(user.Plan)).
			Str("to", string(tier)).
			Msg("plan reconciled")
	}

	logger.Info().Int("candidates", len(stale)).Int("checked", checked).Int("downgraded", downgraded).Msg("reconciliation pass complete")
}

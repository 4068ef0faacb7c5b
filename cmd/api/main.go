package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tellbill/server/internal/adapter/repo"
	memorycache "github.com/tellbill/server/internal/cache/memory"
	rediscache "github.com/tellbill/server/internal/cache/redis"
	"github.com/tellbill/server/internal/http/handlers"
	httpapi "github.com/tellbill/server/internal/http/httpapi"
	"github.com/tellbill/server/internal/infra"
	"github.com/tellbill/server/internal/infra/geoip"
	"github.com/tellbill/server/internal/middleware"
	"github.com/tellbill/server/internal/plan"
	"github.com/tellbill/server/internal/providers/revenuecat"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	runner := infra.NewSQLRunner(dbpool, logger)

	// Plan cache: Redis when configured, in-process otherwise.
	var plans handlers.PlanCache
	rdb, err := infra.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, using in-memory plan cache")
	}
	if rdb != nil {
		plans = rediscache.NewPlanCache(rdb, "", cfg.PlanCacheTTL)
	} else {
		mem := memorycache.NewPlanCache(cfg.PlanCacheTTL)
		defer mem.Close()
		plans = mem
	}

	var provider handlers.SubscriberSource
	if cfg.RevenueCatAPIKey != "" {
		client, err := revenuecat.NewClient(revenuecat.Options{
			APIKey:  cfg.RevenueCatAPIKey,
			BaseURL: cfg.RevenueCatBaseURL,
			Logger:  &logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build revenuecat client")
		}
		provider = client
	} else {
		logger.Warn().Msg("REVENUECAT_API_KEY not set, billing verification serves stored plans")
	}

	var lookup middleware.CountryLookup
	if cfg.GeoIPDBPath != "" {
		resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
		if err != nil {
			logger.Warn().Err(err).Msg("geoip database unavailable")
		} else {
			lookup = resolver.CountryCode
		}
	}

	app := &handlers.App{
		Users:    repo.NewUserRepository(runner),
		Usage:    repo.NewUsageRepository(runner),
		Billing:  repo.NewBillingRepository(runner),
		Provider: provider,
		Plans:    plans,
		Resolver: plan.NewResolver(logger),
		Logger:   logger,
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		JWTSecret:       cfg.JWTSecret,
		RateLimitPerMin: cfg.RateLimitPerMin,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		DefaultLocale:   "en",
		CountryLookup:   lookup,
		Logger:          logger,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

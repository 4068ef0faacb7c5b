package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tellbill/server/internal/adapter/repo"
	"github.com/tellbill/server/internal/domain"
	"github.com/tellbill/server/internal/infra"
)

// planctl is the operator escape hatch: assign a plan directly (comped
// accounts, support escalations) or reset a user's lifetime counters.
func main() {
	var (
		idFlag         string
		emailFlag      string
		planFlag       string
		resetUsageFlag bool
	)

	flag.StringVar(&idFlag, "id", "", "user ID to update (UUID)")
	flag.StringVar(&emailFlag, "email", "", "user email to update")
	flag.StringVar(&planFlag, "plan", "", "plan to assign (free, solo, professional, enterprise)")
	flag.BoolVar(&resetUsageFlag, "reset-usage", false, "reset lifetime usage counters to zero")
	flag.Parse()

	userID := strings.TrimSpace(idFlag)
	email := strings.TrimSpace(emailFlag)
	planArg := strings.TrimSpace(strings.ToLower(planFlag))

	if userID == "" && email == "" {
		exitWithError(errors.New("either -id or -email must be provided"))
	}
	if planArg == "" && !resetUsageFlag {
		exitWithError(errors.New("nothing to do: provide -plan and/or -reset-usage"))
	}
	if planArg != "" && !domain.Tier(planArg).Valid() {
		exitWithError(fmt.Errorf("%w: %q", domain.ErrUnsupportedPlan, planArg))
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "planctl").Logger()
	runner := infra.NewSQLRunner(pool, logger)
	users := repo.NewUserRepository(runner)
	usage := repo.NewUsageRepository(runner)

	var user *domain.User
	if userID != "" {
		user, err = users.GetByID(ctx, userID)
	} else {
		user, err = users.GetByEmail(ctx, email)
	}
	if err != nil {
		exitWithError(fmt.Errorf("failed to load user: %w", err))
	}

	if planArg != "" {
		tier := domain.Tier(planArg)
		if err := users.SetPlan(ctx, user.ID, tier); err != nil {
			exitWithError(fmt.Errorf("failed to update plan: %w", err))
		}
		fmt.Printf("User %s (%s) updated to plan %s\n", user.ID, user.Email, tier)
	}

	if resetUsageFlag {
		if err := usage.Reset(ctx, user.ID); err != nil {
			exitWithError(fmt.Errorf("failed to reset usage: %w", err))
		}
		fmt.Printf("Usage counters reset for user %s\n", user.ID)
	}
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

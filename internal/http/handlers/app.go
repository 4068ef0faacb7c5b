package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tellbill/server/internal/domain"
	"github.com/tellbill/server/internal/infra"
	"github.com/tellbill/server/internal/middleware"
	"github.com/tellbill/server/internal/plan"
)

// SubscriberSource verifies a user's entitlement state against the
// subscription provider.
type SubscriberSource interface {
	Subscriber(ctx context.Context, appUserID string) (domain.EntitlementRecord, error)
}

// BillingRecorder persists plan verification events. The receipt is the
// client-supplied store receipt, empty on server-initiated paths.
type BillingRecorder interface {
	RecordVerification(ctx context.Context, userID string, plan domain.Tier, source, receipt string, entitlements []string) error
}

// PlanCache is the tier fast path in front of the users table.
type PlanCache interface {
	LoadTier(ctx context.Context, userID string) (domain.Tier, bool, error)
	SaveTier(ctx context.Context, userID string, tier domain.Tier) error
	Invalidate(ctx context.Context, userID string) error
}

// App is the handler container, wired once in cmd/api.
type App struct {
	Users    domain.UserRepository
	Usage    domain.UsageRepository
	Billing  BillingRecorder
	Provider SubscriberSource
	Plans    PlanCache
	Resolver *plan.Resolver
	Logger   infra.Logger
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]errorBody{"error": {Code: code, Message: message}})
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

// planFor resolves the user's tier, preferring the cache and falling
// back to the users table. A cache failure is never fatal.
func (a *App) planFor(ctx context.Context, userID string) (domain.Tier, error) {
	if a.Plans != nil {
		if tier, ok, err := a.Plans.LoadTier(ctx, userID); err == nil && ok {
			return tier, nil
		}
	}
	user, err := a.Users.GetByID(ctx, userID)
	if err != nil {
		return domain.TierFree, err
	}
	if a.Plans != nil {
		if err := a.Plans.SaveTier(ctx, userID, user.Plan); err != nil {
			a.Logger.Debug().Err(err).Msg("plan cache write failed")
		}
	}
	return user.Plan, nil
}

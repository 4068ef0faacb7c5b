package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tellbill/server/internal/domain"
	"github.com/tellbill/server/internal/entitlement"
	"github.com/tellbill/server/internal/providers/revenuecat"
)

type verifyRequest struct {
	SubscriptionReceipt string `json:"subscription_receipt"`
}

type verifyResponse struct {
	Plan         string   `json:"plan"`
	Status       string   `json:"status"`
	Entitlements []string `json:"entitlements"`
}

// BillingVerify re-checks the user's subscription against the provider
// and persists the resolved tier. The provider is the source of truth:
// whatever tier it resolves to, including free, overwrites the stored
// plan. When the provider is unreachable the stored plan is returned
// with status "stale" so clients keep working on last known state.
func (a *App) BillingVerify(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}

	// The receipt is audit metadata only. The provider lookup keys on
	// the authenticated user, never on a client-supplied receipt, so a
	// missing or malformed body does not fail verification.
	var req verifyRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	var record domain.EntitlementRecord
	var err error
	if a.Provider != nil {
		record, err = a.Provider.Subscriber(r.Context(), userID)
	} else {
		err = domain.ErrProviderFailure
	}
	if err != nil && !errors.Is(err, revenuecat.ErrSubscriberNotFound) {
		a.Logger.Warn().Err(err).Str("user_id", userID).Msg("billing verification failed, serving stored plan")
		tier, loadErr := a.planFor(r.Context(), userID)
		if loadErr != nil {
			a.error(w, http.StatusBadGateway, "provider_unavailable", "subscription provider unreachable")
			return
		}
		a.json(w, http.StatusOK, verifyResponse{Plan: string(tier), Status: "stale", Entitlements: []string{}})
		return
	}

	tier := entitlement.ResolveTier(record.Active)
	if err := a.Users.SetPlan(r.Context(), userID, tier); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to persist plan")
		return
	}
	if a.Billing != nil {
		if err := a.Billing.RecordVerification(r.Context(), userID, tier, "api", req.SubscriptionReceipt, record.Active); err != nil {
			a.Logger.Debug().Err(err).Str("user_id", userID).Msg("verification audit write failed")
		}
	}
	if a.Plans != nil {
		if err := a.Plans.SaveTier(r.Context(), userID, tier); err != nil {
			a.Logger.Debug().Err(err).Msg("plan cache write failed")
		}
	}

	status := "active"
	if tier == domain.TierFree {
		status = "inactive"
	}
	entitlements := record.Active
	if entitlements == nil {
		entitlements = []string{}
	}
	a.Logger.Info().Str("user_id", userID).Str("plan", string(tier)).Msg("plan verified")
	a.json(w, http.StatusOK, verifyResponse{Plan: string(tier), Status: status, Entitlements: entitlements})
}

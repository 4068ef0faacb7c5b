package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tellbill/server/internal/domain"
	"github.com/tellbill/server/internal/middleware"
	"github.com/tellbill/server/internal/plan"
	"github.com/tellbill/server/internal/usage"
)

type usageIncrementRequest struct {
	ActionType string `json:"action_type"`
}

type usageResponse struct {
	VoiceRecordingsUsed int    `json:"voice_recordings_used"`
	InvoicesCreated     int    `json:"invoices_created"`
	Plan                string `json:"plan"`
	RemainingUses       *int   `json:"remaining_uses"`
	Reason              string `json:"reason,omitempty"`
	Message             string `json:"message,omitempty"`
}

// limitMessages localizes the free-limit denial for the lock overlay.
var limitMessages = map[string]string{
	"en": "free plan limit reached",
	"es": "límite del plan gratuito alcanzado",
	"fr": "limite du forfait gratuit atteinte",
}

func limitMessage(locale string) string {
	if msg, ok := limitMessages[locale]; ok {
		return msg
	}
	return limitMessages["en"]
}

// UsageIncrement is the authoritative write path for usage counters.
// It answers 429 when the free-tier lifetime cap is hit, still carrying
// the authoritative counters so clients can sync their shadow state.
// The cap check happens inside the repository's conditional increment,
// so concurrent requests cannot push a counter past the limit and the
// denied action is never counted.
func (a *App) UsageIncrement(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}

	var req usageIncrementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	metric, ok := domain.ParseMetric(req.ActionType)
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "unknown action_type")
		return
	}

	tier, err := a.planFor(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusUnauthorized, "unauthorized", "unknown user")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load plan")
		return
	}

	limit := plan.CapabilitiesFor(tier).Limit(metric)
	updated, applied, err := a.Usage.Increment(r.Context(), userID, metric, limit)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to record usage")
		return
	}
	if !applied {
		zero := 0
		a.Logger.Info().Str("user_id", userID).Str("metric", string(metric)).Msg("free limit reached")
		a.json(w, http.StatusTooManyRequests, usageResponse{
			VoiceRecordingsUsed: updated.VoiceRecordingsUsed,
			InvoicesCreated:     updated.InvoicesCreated,
			Plan:                string(tier),
			RemainingUses:       &zero,
			Reason:              string(domain.ReasonFreeLimitReached),
			Message:             limitMessage(middleware.LocaleFromContext(r.Context())),
		})
		return
	}

	resp := usageResponse{
		VoiceRecordingsUsed: updated.VoiceRecordingsUsed,
		InvoicesCreated:     updated.InvoicesCreated,
		Plan:                string(tier),
	}
	if _, remaining := usage.CheckLimit(tier, metric, updated.Get(metric)); remaining != domain.Unlimited {
		resp.RemainingUses = &remaining
	}
	a.json(w, http.StatusOK, resp)
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/tellbill/server/internal/domain"
	"github.com/tellbill/server/internal/plan"
	"github.com/tellbill/server/internal/usage"
)

type entitlementsResponse struct {
	Plan         string            `json:"plan"`
	Capabilities []string          `json:"capabilities"`
	Limits       map[string]int    `json:"limits"`
	Usage        map[string]int    `json:"usage"`
	Remaining    map[string]*int   `json:"remaining"`
	Upgrades     map[string]string `json:"upgrades,omitempty"`
}

// Entitlements returns the full capability and usage snapshot for the
// authenticated user, the payload clients seed their local gate from.
func (a *App) Entitlements(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
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

	counters, err := a.Usage.Get(r.Context(), userID)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load usage")
		return
	}

	resp := entitlementsResponse{
		Plan:         string(tier),
		Capabilities: []string{},
		Limits:       map[string]int{},
		Usage:        map[string]int{},
		Remaining:    map[string]*int{},
		Upgrades:     map[string]string{},
	}
	for _, cap := range plan.Granted(tier) {
		resp.Capabilities = append(resp.Capabilities, string(cap))
	}
	caps := plan.CapabilitiesFor(tier)
	for _, metric := range []domain.Metric{domain.MetricVoiceRecordings, domain.MetricInvoices} {
		limit := caps.Limit(metric)
		used := counters.Get(metric)
		resp.Limits[string(metric)] = limit
		resp.Usage[string(metric)] = used
		if _, remaining := usage.CheckLimit(tier, metric, used); remaining != domain.Unlimited {
			rem := remaining
			resp.Remaining[string(metric)] = &rem
		} else {
			resp.Remaining[string(metric)] = nil
		}
	}
	for _, cap := range domain.AllCapabilities {
		if a.Resolver.HasCapability(tier, cap) {
			continue
		}
		resp.Upgrades[string(cap)] = string(a.Resolver.MinimumTierFor(cap))
	}
	a.json(w, http.StatusOK, resp)
}

package domain

import "time"

// EntitlementRecord is a snapshot of the subscription provider's view of
// a user: the set of active entitlement identifiers plus period
// metadata. The tier derived from it is a pure function of Active.
type EntitlementRecord struct {
	Active      []string   `json:"active"`
	PeriodStart *time.Time `json:"period_start,omitempty"`
	PeriodEnd   *time.Time `json:"period_end,omitempty"`
	AutoRenew   bool       `json:"auto_renew"`
}

// Empty reports whether no entitlement is active.
func (r EntitlementRecord) Empty() bool {
	return len(r.Active) == 0
}

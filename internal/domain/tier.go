package domain

// Tier enumerates subscription plan levels in ascending order of access.
type Tier string

const (
	TierFree         Tier = "free"
	TierSolo         Tier = "solo"
	TierProfessional Tier = "professional"
	TierEnterprise   Tier = "enterprise"
)

// tierRank orders tiers; higher rank means a strict superset of access.
var tierRank = map[Tier]int{
	TierFree:         0,
	TierSolo:         1,
	TierProfessional: 2,
	TierEnterprise:   3,
}

// TiersAscending lists every tier from most to least restrictive.
var TiersAscending = []Tier{TierFree, TierSolo, TierProfessional, TierEnterprise}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	_, ok := tierRank[t]
	return ok
}

// Rank returns the total-order position of the tier. Unknown tiers rank
// below free so they never grant access.
func (t Tier) Rank() int {
	if r, ok := tierRank[t]; ok {
		return r
	}
	return -1
}

// AtLeast reports whether t grants at least the access of other.
func (t Tier) AtLeast(other Tier) bool {
	return t.Rank() >= other.Rank()
}

// ParseTier normalizes a stored plan string. Anything unrecognized maps
// to the free tier: a corrupt or missing plan must never unlock access.
func ParseTier(s string) Tier {
	t := Tier(s)
	if t.Valid() {
		return t
	}
	return TierFree
}

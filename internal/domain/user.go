package domain

import "time"

// UserRole enumerates supported roles.
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// User represents an authenticated contractor account.
type User struct {
	ID        string
	Subject   string // identity-provider subject claim
	Email     string
	Name      string
	Locale    string
	Role      UserRole
	Plan      Tier
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsFree reports whether the user is on the free plan.
func (u User) IsFree() bool {
	return u.Plan == TierFree
}

package domain

import (
	"errors"
	"time"
)

// User is a member of the referral graph. ReferredByID is empty for roots.
type User struct {
	ID                   string
	Email                string
	Name                 string
	ReferralCode         string
	ReferredByID         string
	Generation           int
	TotalDirectReferrals int
	LeadershipID         int
	Designation          string
	Active               bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// HasReferrer reports whether the user has an upline.
func (u *User) HasReferrer() bool { return u.ReferredByID != "" }

// UplineUser is one hop of an upline walk.
type UplineUser struct {
	User       *User
	Generation int
}

// Role is an API operator's access level. Roles are carried in bearer tokens
// and are unrelated to referral designations.
type Role string

const (
	// RoleAdmin may run payouts, sweeps and referral changes.
	RoleAdmin Role = "admin"

	// RoleOperator may process payments and retry fulfillment.
	RoleOperator Role = "operator"

	// RoleViewer can only read.
	RoleViewer Role = "viewer"
)

var validRoles = map[Role]bool{
	RoleAdmin:    true,
	RoleOperator: true,
	RoleViewer:   true,
}

// IsValid checks if the role is known.
func (r Role) IsValid() bool {
	return validRoles[r]
}

// Allows reports whether r satisfies the minimum role min.
func (r Role) Allows(min Role) bool {
	switch min {
	case RoleAdmin:
		return r == RoleAdmin
	case RoleOperator:
		return r == RoleAdmin || r == RoleOperator
	case RoleViewer:
		return r.IsValid()
	}
	return false
}

// Principal is the authenticated caller of the ops API.
type Principal struct {
	Subject string
	Role    Role
}

// Authentication errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

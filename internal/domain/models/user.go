package models

import (
	"github.com/google/uuid"
)

// Role is the coarse-grained role assigned to a directory account.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

// MFAStatus tracks where an account is in the MFA lifecycle. Transitions only
// move forward: none -> setup_required -> enabled. This service never regresses
// the status automatically.
type MFAStatus string

const (
	MFAStatusNone          MFAStatus = "none"
	MFAStatusSetupRequired MFAStatus = "setup_required"
	MFAStatusEnabled       MFAStatus = "enabled"
)

// Rank orders statuses for the no-regression guard.
func (s MFAStatus) Rank() int {
	switch s {
	case MFAStatusSetupRequired:
		return 1
	case MFAStatusEnabled:
		return 2
	default:
		return 0
	}
}

// User is the directory snapshot this service reads through the store gateway.
// The directory itself (accounts, passwords, primary sessions) is owned by an
// external provider; only the columns the MFA and permission logic needs are
// mapped here.
type User struct {
	ID          uuid.UUID    `json:"id" db:"id"`
	Email       string       `json:"email" db:"email"`
	Phone       string       `json:"phone,omitempty" db:"phone"`
	Role        Role         `json:"role" db:"role"`
	Permissions []Permission `json:"permissions" db:"permissions"`
	MFAStatus   MFAStatus    `json:"mfa_status" db:"mfa_status"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// MFAType identifies the second-factor channel a user enrolled with.
type MFAType string

const (
	MFATypeApp   MFAType = "app"   // authenticator application (TOTP)
	MFATypeSMS   MFAType = "sms"   // one-time code over SMS
	MFATypeEmail MFAType = "email" // one-time code over email
)

// ParseMFAType validates a wire-level type string.
func ParseMFAType(s string) (MFAType, bool) {
	switch MFAType(s) {
	case MFATypeApp, MFATypeSMS, MFATypeEmail:
		return MFAType(s), true
	}
	return "", false
}

// MFAFactor is one enrolled second factor. At most one row exists per
// (user_id, type); re-enrollment rotates the secret and resets Verified.
type MFAFactor struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	UserID          uuid.UUID  `json:"user_id" db:"user_id"`
	Type            MFAType    `json:"type" db:"type"`
	SecretEncrypted string     `json:"-" db:"secret_encrypted"`
	Verified        bool       `json:"verified" db:"verified"`
	LastUsedAt      *time.Time `json:"last_used_at,omitempty" db:"last_used_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

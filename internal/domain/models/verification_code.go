package models

import (
	"time"

	"github.com/google/uuid"
)

// VerificationCodeTTL is how long an SMS/email code stays redeemable.
const VerificationCodeTTL = 15 * time.Minute

// VerificationCodeLength is the number of decimal digits in a code.
const VerificationCodeLength = 6

// VerificationCode is a single-use numeric code issued for the SMS and email
// enrollment paths. Only the SHA-256 hash of the code is stored; the hash is
// deterministic so consumption can be a single conditional UPDATE.
type VerificationCode struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	UserID     uuid.UUID  `json:"user_id" db:"user_id"`
	Type       MFAType    `json:"type" db:"type"`
	CodeHash   string     `json:"-" db:"code_hash"`
	ExpiresAt  time.Time  `json:"expires_at" db:"expires_at"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty" db:"consumed_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// Active reports whether the code can still be redeemed at the given instant.
func (vc *VerificationCode) Active(now time.Time) bool {
	return vc.ConsumedAt == nil && now.Before(vc.ExpiresAt)
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// BackupCodeDefaultCount is how many recovery codes a batch holds unless the
// caller asks for a different size.
const BackupCodeDefaultCount = 10

// BackupCodeMaxCount caps a requested batch size.
const BackupCodeMaxCount = 20

// MFABackupCode is one single-use recovery code. Only the SHA-256 hash is
// stored; redemption marks used_at through a conditional UPDATE so each code
// can be spent exactly once.
type MFABackupCode struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	CodeHash  string     `json:"-" db:"code_hash"`
	UsedAt    *time.Time `json:"used_at,omitempty" db:"used_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// Package repository declares the narrow store-gateway contracts through
// which the MFA core reaches the external directory and durable storage. The
// concrete backing store is swappable without touching the MFA or permission
// logic.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shoplite/auth-service/internal/domain/models"
)

// MFAFactorRepository persists enrolled second factors.
type MFAFactorRepository interface {
	// FindByUserIDAndType returns domain errors.ErrFactorNotFound when no
	// row exists.
	FindByUserIDAndType(ctx context.Context, userID uuid.UUID, factorType models.MFAType) (*models.MFAFactor, error)

	// Upsert inserts the factor or, when a row for (user_id, type) already
	// exists, rotates its secret and resets verified to false.
	Upsert(ctx context.Context, factor *models.MFAFactor) error

	// MarkVerified flips verified to true and records last_used_at.
	MarkVerified(ctx context.Context, userID uuid.UUID, factorType models.MFAType, usedAt time.Time) error

	// Touch records last_used_at on an already-verified factor.
	Touch(ctx context.Context, userID uuid.UUID, factorType models.MFAType, usedAt time.Time) error

	// DeleteByUserIDAndType removes a factor; reports whether a row existed.
	DeleteByUserIDAndType(ctx context.Context, userID uuid.UUID, factorType models.MFAType) (bool, error)
}

// VerificationCodeRepository persists single-use numeric codes for the SMS
// and email paths.
type VerificationCodeRepository interface {
	Create(ctx context.Context, code *models.VerificationCode) error

	// ConsumeIfMatch atomically marks the latest active code for
	// (user_id, type) as consumed when its hash matches. It must be a single
	// conditional UPDATE so that of N concurrent attempts with the correct
	// code exactly one succeeds. Returns false for absent, expired,
	// mismatched, or already-consumed codes without distinguishing them.
	ConsumeIfMatch(ctx context.Context, userID uuid.UUID, codeType models.MFAType, codeHash string) (bool, error)

	// DeleteByUserIDAndType drops outstanding codes, e.g. before a re-issue.
	DeleteByUserIDAndType(ctx context.Context, userID uuid.UUID, codeType models.MFAType) (int64, error)

	// DeleteExpired sweeps inert rows; expired codes are already unusable so
	// this is housekeeping only.
	DeleteExpired(ctx context.Context) (int64, error)
}

// BackupCodeRepository persists single-use recovery codes.
type BackupCodeRepository interface {
	// Replace atomically swaps the user's recovery codes for a new batch, so
	// there is never a window where old and new codes are both redeemable.
	Replace(ctx context.Context, userID uuid.UUID, codes []*models.MFABackupCode) error

	// CountActive returns how many codes remain unspent.
	CountActive(ctx context.Context, userID uuid.UUID) (int, error)

	// ConsumeIfMatch atomically marks an unspent code with the given hash as
	// used. Same single conditional UPDATE contract as verification codes:
	// of N concurrent redemptions of one code exactly one succeeds.
	ConsumeIfMatch(ctx context.Context, userID uuid.UUID, codeHash string) (bool, error)

	// DeleteByUserID drops all of a user's codes.
	DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
}

// UserRepository reads and updates the slice of the external directory this
// service is allowed to touch.
type UserRepository interface {
	// FindByID returns domain errors.ErrUserNotFound when the account does
	// not exist.
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// SetMFAStatus advances mfa_status. The update is guarded so the status
	// never moves backwards: a request to set a lower-ranked status than the
	// stored one is a no-op.
	SetMFAStatus(ctx context.Context, id uuid.UUID, status models.MFAStatus) error
}

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/shoplite/auth-service/internal/domain/errors"
	"github.com/shoplite/auth-service/internal/domain/models"
	"github.com/shoplite/auth-service/internal/domain/repository"
)

type pgxMFAFactorRepository struct {
	db *pgxpool.Pool
}

// NewPgxMFAFactorRepository creates the postgres-backed factor store.
func NewPgxMFAFactorRepository(db *pgxpool.Pool) repository.MFAFactorRepository {
	return &pgxMFAFactorRepository{db: db}
}

func (r *pgxMFAFactorRepository) FindByUserIDAndType(
	ctx context.Context, userID uuid.UUID, factorType models.MFAType) (*models.MFAFactor, error) {
	query := `
		SELECT id, user_id, type, secret_encrypted, verified, last_used_at, created_at, updated_at
		FROM mfa_factors
		WHERE user_id = $1 AND type = $2`
	factor := &models.MFAFactor{}
	err := r.db.QueryRow(ctx, query, userID, factorType).Scan(
		&factor.ID, &factor.UserID, &factor.Type, &factor.SecretEncrypted,
		&factor.Verified, &factor.LastUsedAt, &factor.CreatedAt, &factor.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrFactorNotFound
		}
		return nil, fmt.Errorf("failed to find MFA factor by user ID and type: %w", err)
	}
	return factor, nil
}

func (r *pgxMFAFactorRepository) Upsert(ctx context.Context, factor *models.MFAFactor) error {
	// The UNIQUE(user_id, type) constraint makes this the single write path
	// for both first enrollment and secret rotation. Rotation always resets
	// verified and last_used_at.
	query := `
		INSERT INTO mfa_factors (id, user_id, type, secret_encrypted, verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (user_id, type) DO UPDATE SET
			secret_encrypted = EXCLUDED.secret_encrypted,
			verified = false,
			last_used_at = NULL,
			updated_at = EXCLUDED.updated_at`
	now := time.Now().UTC()
	_, err := r.db.Exec(ctx, query,
		factor.ID, factor.UserID, factor.Type, factor.SecretEncrypted, factor.Verified, now,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: MFA factor ID conflict: %s", domainErrors.ErrConflict, pgErr.Detail)
		}
		return fmt.Errorf("failed to upsert MFA factor: %w", err)
	}
	return nil
}

func (r *pgxMFAFactorRepository) MarkVerified(
	ctx context.Context, userID uuid.UUID, factorType models.MFAType, usedAt time.Time) error {
	query := `
		UPDATE mfa_factors SET verified = true, last_used_at = $3, updated_at = $3
		WHERE user_id = $1 AND type = $2`
	commandTag, err := r.db.Exec(ctx, query, userID, factorType, usedAt)
	if err != nil {
		return fmt.Errorf("failed to mark MFA factor as verified: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return domainErrors.ErrFactorNotFound
	}
	return nil
}

func (r *pgxMFAFactorRepository) Touch(
	ctx context.Context, userID uuid.UUID, factorType models.MFAType, usedAt time.Time) error {
	query := `
		UPDATE mfa_factors SET last_used_at = $3, updated_at = $3
		WHERE user_id = $1 AND type = $2`
	commandTag, err := r.db.Exec(ctx, query, userID, factorType, usedAt)
	if err != nil {
		return fmt.Errorf("failed to touch MFA factor: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return domainErrors.ErrFactorNotFound
	}
	return nil
}

func (r *pgxMFAFactorRepository) DeleteByUserIDAndType(
	ctx context.Context, userID uuid.UUID, factorType models.MFAType) (bool, error) {
	query := `DELETE FROM mfa_factors WHERE user_id = $1 AND type = $2`
	commandTag, err := r.db.Exec(ctx, query, userID, factorType)
	if err != nil {
		return false, fmt.Errorf("failed to delete MFA factor: %w", err)
	}
	return commandTag.RowsAffected() > 0, nil
}

var _ repository.MFAFactorRepository = (*pgxMFAFactorRepository)(nil)

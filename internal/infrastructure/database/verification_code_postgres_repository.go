package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/shoplite/auth-service/internal/domain/errors"
	"github.com/shoplite/auth-service/internal/domain/models"
	"github.com/shoplite/auth-service/internal/domain/repository"
)

type pgxVerificationCodeRepository struct {
	db *pgxpool.Pool
}

// NewPgxVerificationCodeRepository creates the postgres-backed code store.
func NewPgxVerificationCodeRepository(db *pgxpool.Pool) repository.VerificationCodeRepository {
	return &pgxVerificationCodeRepository{db: db}
}

func (r *pgxVerificationCodeRepository) Create(ctx context.Context, vc *models.VerificationCode) error {
	query := `
		INSERT INTO verification_codes (id, user_id, type, code_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Exec(ctx, query,
		vc.ID, vc.UserID, vc.Type, vc.CodeHash, vc.ExpiresAt, vc.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: verification code ID conflict: %s", domainErrors.ErrConflict, pgErr.Detail)
		}
		return fmt.Errorf("failed to create verification code: %w", err)
	}
	return nil
}

// ConsumeIfMatch is the single-use guarantee. The compare and the consume are
// one conditional UPDATE, so two concurrent submissions of the same code race
// on the row and exactly one sees RowsAffected == 1.
func (r *pgxVerificationCodeRepository) ConsumeIfMatch(
	ctx context.Context, userID uuid.UUID, codeType models.MFAType, codeHash string) (bool, error) {
	query := `
		UPDATE verification_codes
		SET consumed_at = NOW()
		WHERE id = (
			SELECT id FROM verification_codes
			WHERE user_id = $1 AND type = $2 AND code_hash = $3
				AND consumed_at IS NULL AND expires_at > NOW()
			ORDER BY created_at DESC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)`
	commandTag, err := r.db.Exec(ctx, query, userID, codeType, codeHash)
	if err != nil {
		return false, fmt.Errorf("failed to consume verification code: %w", err)
	}
	return commandTag.RowsAffected() > 0, nil
}

func (r *pgxVerificationCodeRepository) DeleteByUserIDAndType(
	ctx context.Context, userID uuid.UUID, codeType models.MFAType) (int64, error) {
	query := `DELETE FROM verification_codes WHERE user_id = $1 AND type = $2`
	commandTag, err := r.db.Exec(ctx, query, userID, codeType)
	if err != nil {
		return 0, fmt.Errorf("failed to delete verification codes by user ID and type: %w", err)
	}
	return commandTag.RowsAffected(), nil
}

func (r *pgxVerificationCodeRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM verification_codes WHERE expires_at < $1`
	commandTag, err := r.db.Exec(ctx, query, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired verification codes: %w", err)
	}
	return commandTag.RowsAffected(), nil
}

var _ repository.VerificationCodeRepository = (*pgxVerificationCodeRepository)(nil)

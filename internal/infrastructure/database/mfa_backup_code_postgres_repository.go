package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shoplite/auth-service/internal/domain/models"
	"github.com/shoplite/auth-service/internal/domain/repository"
)

type pgxBackupCodeRepository struct {
	db *pgxpool.Pool
}

// NewPgxBackupCodeRepository creates the postgres-backed recovery code store.
func NewPgxBackupCodeRepository(db *pgxpool.Pool) repository.BackupCodeRepository {
	return &pgxBackupCodeRepository{db: db}
}

// Replace swaps the whole batch inside one transaction so a concurrent
// redemption sees either the old codes or the new ones, never a mix.
func (r *pgxBackupCodeRepository) Replace(ctx context.Context, userID uuid.UUID, codes []*models.MFABackupCode) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin backup code transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM mfa_backup_codes WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear previous backup codes: %w", err)
	}

	rows := make([][]interface{}, len(codes))
	for i, code := range codes {
		rows[i] = []interface{}{code.ID, code.UserID, code.CodeHash, code.UsedAt, code.CreatedAt}
	}
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"mfa_backup_codes"},
		[]string{"id", "user_id", "code_hash", "used_at", "created_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to insert backup codes: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit backup codes: %w", err)
	}
	return nil
}

func (r *pgxBackupCodeRepository) CountActive(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM mfa_backup_codes WHERE user_id = $1 AND used_at IS NULL`
	var count int
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active backup codes: %w", err)
	}
	return count, nil
}

// ConsumeIfMatch follows the verification code pattern: the compare and the
// spend are one conditional UPDATE, so concurrent redemptions of the same
// code race on the row and exactly one sees RowsAffected == 1.
func (r *pgxBackupCodeRepository) ConsumeIfMatch(ctx context.Context, userID uuid.UUID, codeHash string) (bool, error) {
	query := `
		UPDATE mfa_backup_codes
		SET used_at = $3
		WHERE user_id = $1 AND code_hash = $2 AND used_at IS NULL`
	commandTag, err := r.db.Exec(ctx, query, userID, codeHash, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to consume backup code: %w", err)
	}
	return commandTag.RowsAffected() > 0, nil
}

func (r *pgxBackupCodeRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `DELETE FROM mfa_backup_codes WHERE user_id = $1`
	commandTag, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete backup codes by user ID: %w", err)
	}
	return commandTag.RowsAffected(), nil
}

var _ repository.BackupCodeRepository = (*pgxBackupCodeRepository)(nil)

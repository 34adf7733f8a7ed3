package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/shoplite/auth-service/internal/domain/errors"
	"github.com/shoplite/auth-service/internal/domain/models"
	"github.com/shoplite/auth-service/internal/domain/repository"
)

type pgxUserRepository struct {
	db *pgxpool.Pool
}

// NewPgxUserRepository creates the gateway to the directory's users table.
// Only the columns the MFA and permission logic needs are touched.
func NewPgxUserRepository(db *pgxpool.Pool) repository.UserRepository {
	return &pgxUserRepository{db: db}
}

func (r *pgxUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `
		SELECT id, email, COALESCE(phone, ''), role, permissions, mfa_status
		FROM users
		WHERE id = $1`
	user := &models.User{}
	var permissions []string
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.Phone, &user.Role, &permissions, &user.MFAStatus,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	user.Permissions = make([]models.Permission, 0, len(permissions))
	for _, p := range permissions {
		user.Permissions = append(user.Permissions, models.Permission(p))
	}
	return user, nil
}

// SetMFAStatus advances mfa_status. The CASE ranking in the WHERE clause
// keeps the transition monotonic: none -> setup_required -> enabled, never
// backwards. A lower-ranked status is a silent no-op.
func (r *pgxUserRepository) SetMFAStatus(ctx context.Context, id uuid.UUID, status models.MFAStatus) error {
	query := `
		UPDATE users SET mfa_status = $2, updated_at = $3
		WHERE id = $1
			AND (CASE mfa_status
				WHEN 'enabled' THEN 2
				WHEN 'setup_required' THEN 1
				ELSE 0
			END) <= (CASE $2
				WHEN 'enabled' THEN 2
				WHEN 'setup_required' THEN 1
				ELSE 0
			END)`
	commandTag, err := r.db.Exec(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set MFA status: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		// Either the user does not exist or the stored status outranks the
		// requested one. Verify which so a missing user is not swallowed.
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check user existence: %w", err)
		}
		if !exists {
			return domainErrors.ErrUserNotFound
		}
	}
	return nil
}

var _ repository.UserRepository = (*pgxUserRepository)(nil)

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shoplite/auth-service/internal/config"
	domainErrors "github.com/shoplite/auth-service/internal/domain/errors"
	"github.com/shoplite/auth-service/internal/domain/models"
	"github.com/shoplite/auth-service/internal/domain/repository"
)

// BackupCodeService manages single-use recovery codes. A batch is issued on
// demand once a factor is enabled; redeeming a code is the fallback second
// factor when the enrolled channel is unavailable.
type BackupCodeService interface {
	// Generate replaces the user's recovery codes with a fresh batch and
	// returns the plaintext codes. This is the only time they are visible.
	Generate(ctx context.Context, userID uuid.UUID, count int) ([]string, error)

	// Count returns how many codes remain unspent.
	Count(ctx context.Context, userID uuid.UUID) (int, error)

	// Redeem spends a recovery code and mints the session elevation, the
	// same credential a regular verification produces.
	Redeem(ctx context.Context, session *SessionClaims, code string) (*VerifyResult, error)
}

type backupCodeService struct {
	cfg        *config.MFAConfig
	rates      *config.RateLimitConfig
	generator  CodeGenerator
	elevation  ElevationService
	backupRepo repository.BackupCodeRepository
	userRepo   repository.UserRepository
	publisher  EventPublisher
	limiter    AttemptLimiter
	logger     *zap.Logger
}

// BackupCodeServiceConfig holds dependencies for NewBackupCodeService.
type BackupCodeServiceConfig struct {
	MFAConfig  *config.MFAConfig
	RateConfig *config.RateLimitConfig
	Generator  CodeGenerator
	Elevation  ElevationService
	BackupRepo repository.BackupCodeRepository
	UserRepo   repository.UserRepository
	Publisher  EventPublisher
	Limiter    AttemptLimiter
	Logger     *zap.Logger
}

func NewBackupCodeService(cfg BackupCodeServiceConfig) BackupCodeService {
	return &backupCodeService{
		cfg:        cfg.MFAConfig,
		rates:      cfg.RateConfig,
		generator:  cfg.Generator,
		elevation:  cfg.Elevation,
		backupRepo: cfg.BackupRepo,
		userRepo:   cfg.UserRepo,
		publisher:  cfg.Publisher,
		limiter:    cfg.Limiter,
		logger:     cfg.Logger.Named("backup_code_service"),
	}
}

func (s *backupCodeService) Generate(ctx context.Context, userID uuid.UUID, count int) ([]string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.requireEnabled(ctx, userID); err != nil {
		return nil, err
	}

	if count <= 0 || count > models.BackupCodeMaxCount {
		count = models.BackupCodeDefaultCount
	}

	now := time.Now().UTC()
	plain := make([]string, count)
	batch := make([]*models.MFABackupCode, count)
	for i := range batch {
		code, err := s.generator.GenerateBackupCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate backup code: %w", err)
		}
		plain[i] = code
		batch[i] = &models.MFABackupCode{
			ID:        uuid.New(),
			UserID:    userID,
			CodeHash:  HashCode(code),
			CreatedAt: now,
		}
	}

	if err := s.backupRepo.Replace(ctx, userID, batch); err != nil {
		return nil, fmt.Errorf("%w: storing backup codes: %v", domainErrors.ErrDependency, err)
	}

	s.publish(ctx, models.AuthMFABackupCodesGeneratedV1, userID, models.MFABackupCodesGeneratedEvent{
		UserID:      userID.String(),
		Count:       count,
		GeneratedAt: now,
	})

	return plain, nil
}

func (s *backupCodeService) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.requireEnabled(ctx, userID); err != nil {
		return 0, err
	}

	count, err := s.backupRepo.CountActive(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: counting backup codes: %v", domainErrors.ErrDependency, err)
	}
	return count, nil
}

// Redeem consumes a code as the fallback second factor. A spent, unknown or
// malformed code all surface as the same ErrInvalidCode.
func (s *backupCodeService) Redeem(ctx context.Context, session *SessionClaims, code string) (*VerifyResult, error) {
	if session == nil {
		return nil, domainErrors.ErrUnauthorized
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if s.limiter != nil && s.rates != nil && s.rates.Enabled && s.rates.VerifyPerUser.Enabled {
		key := fmt.Sprintf("mfa:verify:%s:backup", session.UserID)
		allowed, err := s.limiter.Allow(ctx, key, s.rates.VerifyPerUser.Limit, s.rates.VerifyPerUser.Window)
		if err != nil {
			s.logger.Warn("Backup code rate limiter unavailable", zap.Error(err))
		}
		if !allowed {
			return nil, domainErrors.ErrRateLimited
		}
	}

	if err := s.requireEnabled(ctx, session.UserID); err != nil {
		return nil, err
	}

	consumed, err := s.backupRepo.ConsumeIfMatch(ctx, session.UserID, HashCode(code))
	if err != nil {
		return nil, fmt.Errorf("%w: consuming backup code: %v", domainErrors.ErrDependency, err)
	}
	if !consumed {
		s.logger.Info("Backup code rejected", zap.String("user_id", session.UserID.String()))
		return nil, domainErrors.ErrInvalidCode
	}

	s.publish(ctx, models.AuthMFABackupCodeUsedV1, session.UserID, models.MFABackupCodeUsedEvent{
		UserID: session.UserID.String(),
		UsedAt: time.Now().UTC(),
	})

	token, expiresAt, err := s.elevation.Issue(session.UserID, session.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue elevation token: %w", err)
	}
	return &VerifyResult{ElevationToken: token, ExpiresAt: expiresAt}, nil
}

func (s *backupCodeService) requireEnabled(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("%w: loading user: %v", domainErrors.ErrDependency, err)
	}
	if user.MFAStatus != models.MFAStatusEnabled {
		return domainErrors.ErrMFANotEnabled
	}
	return nil
}

func (s *backupCodeService) publish(ctx context.Context, eventType string, userID uuid.UUID, payload interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, eventType, userID.String(), payload); err != nil {
		s.logger.Warn("Failed to publish event",
			zap.Error(err), zap.String("event_type", eventType), zap.String("user_id", userID.String()))
	}
}

func (s *backupCodeService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := s.cfg.StoreTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

var _ BackupCodeService = (*backupCodeService)(nil)

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

// VerifyResult is returned on a successful code check. EnabledNow reports
// whether this verification flipped a pending factor to verified.
type VerifyResult struct {
	ElevationToken string
	ExpiresAt      time.Time
	EnabledNow     bool
}

// VerificationService checks submitted second-factor codes and mints the
// session elevation credential on success.
type VerificationService interface {
	Submit(ctx context.Context, session *SessionClaims, userID uuid.UUID, factorType models.MFAType, code string) (*VerifyResult, error)
}

type verificationService struct {
	cfg        *config.MFAConfig
	rates      *config.RateLimitConfig
	totp       TOTPService
	cipher     EncryptionService
	elevation  ElevationService
	factorRepo repository.MFAFactorRepository
	codeRepo   repository.VerificationCodeRepository
	userRepo   repository.UserRepository
	publisher  EventPublisher
	limiter    AttemptLimiter
	logger     *zap.Logger
}

// VerificationServiceConfig holds dependencies for NewVerificationService.
type VerificationServiceConfig struct {
	MFAConfig  *config.MFAConfig
	RateConfig *config.RateLimitConfig
	TOTP       TOTPService
	Cipher     EncryptionService
	Elevation  ElevationService
	FactorRepo repository.MFAFactorRepository
	CodeRepo   repository.VerificationCodeRepository
	UserRepo   repository.UserRepository
	Publisher  EventPublisher
	Limiter    AttemptLimiter
	Logger     *zap.Logger
}

func NewVerificationService(cfg VerificationServiceConfig) VerificationService {
	return &verificationService{
		cfg:        cfg.MFAConfig,
		rates:      cfg.RateConfig,
		totp:       cfg.TOTP,
		cipher:     cfg.Cipher,
		elevation:  cfg.Elevation,
		factorRepo: cfg.FactorRepo,
		codeRepo:   cfg.CodeRepo,
		userRepo:   cfg.UserRepo,
		publisher:  cfg.Publisher,
		limiter:    cfg.Limiter,
		logger:     cfg.Logger.Named("verification_service"),
	}
}

// Submit validates a code against the user's enrolled factor. Wrong, expired
// and already-consumed codes all surface as the same ErrInvalidCode; the real
// reason is logged server side only, so responses carry no oracle about which
// codes exist.
func (s *verificationService) Submit(ctx context.Context, session *SessionClaims, userID uuid.UUID, factorType models.MFAType, code string) (*VerifyResult, error) {
	if session == nil {
		return nil, domainErrors.ErrUnauthorized
	}
	if session.UserID != userID {
		return nil, domainErrors.ErrForbidden
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if s.limiter != nil && s.rates != nil && s.rates.Enabled && s.rates.VerifyPerUser.Enabled {
		key := fmt.Sprintf("mfa:verify:%s:%s", userID, factorType)
		allowed, err := s.limiter.Allow(ctx, key, s.rates.VerifyPerUser.Limit, s.rates.VerifyPerUser.Window)
		if err != nil {
			s.logger.Warn("Verify rate limiter unavailable", zap.Error(err))
		}
		if !allowed {
			return nil, domainErrors.ErrRateLimited
		}
	}

	factor, err := s.factorRepo.FindByUserIDAndType(ctx, userID, factorType)
	if err != nil {
		if errors.Is(err, domainErrors.ErrFactorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: loading factor: %v", domainErrors.ErrDependency, err)
	}

	switch factor.Type {
	case models.MFATypeApp:
		secret, err := s.cipher.Decrypt(factor.SecretEncrypted, s.cfg.SecretEncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt TOTP secret: %w", err)
		}
		valid, err := s.totp.ValidateCode(secret, code)
		if err != nil {
			s.logger.Warn("TOTP validation error",
				zap.Error(err), zap.String("user_id", userID.String()))
			return nil, domainErrors.ErrInvalidCode
		}
		if !valid {
			s.logger.Info("TOTP code mismatch", zap.String("user_id", userID.String()))
			return nil, domainErrors.ErrInvalidCode
		}

	case models.MFATypeSMS, models.MFATypeEmail:
		consumed, err := s.codeRepo.ConsumeIfMatch(ctx, userID, factorType, HashCode(code))
		if err != nil {
			return nil, fmt.Errorf("%w: consuming verification code: %v", domainErrors.ErrDependency, err)
		}
		if !consumed {
			s.logger.Info("One-time code rejected",
				zap.String("user_id", userID.String()), zap.String("type", string(factorType)))
			return nil, domainErrors.ErrInvalidCode
		}

	default:
		return nil, fmt.Errorf("%w: unsupported factor type %q", domainErrors.ErrInvalidRequest, factorType)
	}

	now := time.Now().UTC()
	result := &VerifyResult{}

	if !factor.Verified {
		if err := s.factorRepo.MarkVerified(ctx, userID, factorType, now); err != nil {
			return nil, fmt.Errorf("%w: marking factor verified: %v", domainErrors.ErrDependency, err)
		}
		if err := s.userRepo.SetMFAStatus(ctx, userID, models.MFAStatusEnabled); err != nil {
			return nil, fmt.Errorf("%w: updating mfa status: %v", domainErrors.ErrDependency, err)
		}
		result.EnabledNow = true
		s.publish(ctx, models.AuthMFAEnabledV1, userID, models.MFAEnabledEvent{
			UserID:    userID.String(),
			Type:      factorType,
			EnabledAt: now,
		})
	} else {
		if err := s.factorRepo.Touch(ctx, userID, factorType, now); err != nil {
			s.logger.Warn("Failed to record factor use",
				zap.Error(err), zap.String("user_id", userID.String()), zap.String("type", string(factorType)))
		}
	}

	s.publish(ctx, models.AuthMFAVerifiedV1, userID, models.MFAVerifiedEvent{
		UserID:     userID.String(),
		Type:       factorType,
		VerifiedAt: now,
	})

	token, expiresAt, err := s.elevation.Issue(userID, session.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue elevation token: %w", err)
	}
	result.ElevationToken = token
	result.ExpiresAt = expiresAt
	return result, nil
}

func (s *verificationService) publish(ctx context.Context, eventType string, userID uuid.UUID, payload interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, eventType, userID.String(), payload); err != nil {
		s.logger.Warn("Failed to publish event",
			zap.Error(err), zap.String("event_type", eventType), zap.String("user_id", userID.String()))
	}
}

func (s *verificationService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := s.cfg.StoreTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

var _ VerificationService = (*verificationService)(nil)

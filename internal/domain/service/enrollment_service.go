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

// EnrollmentResult is the material returned to complete enrollment. For the
// app factor it carries the raw secret (for manual entry) and provisioning
// URI/QR; for SMS and email only an acknowledgement, never the code itself.
type EnrollmentResult struct {
	Type       models.MFAType
	Secret     string
	OTPAuthURL string
	QRCode     string
	Message    string
}

// EnrollmentService orchestrates creation and rotation of second factors.
type EnrollmentService interface {
	// Setup enrolls or re-enrolls a factor. Re-enrollment of a verified
	// factor of the same type is rejected with ErrFactorAlreadyVerified
	// until the existing factor is disabled.
	Setup(ctx context.Context, userID uuid.UUID, factorType models.MFAType) (*EnrollmentResult, error)

	// Resend re-issues a one-time code for a pending SMS or email factor.
	Resend(ctx context.Context, userID uuid.UUID, factorType models.MFAType) error

	// Disable removes a factor. The user's mfa_status is left untouched;
	// status never regresses automatically.
	Disable(ctx context.Context, userID uuid.UUID, factorType models.MFAType) error
}

type enrollmentService struct {
	cfg        *config.MFAConfig
	rates      *config.RateLimitConfig
	generator  CodeGenerator
	totp       TOTPService
	cipher     EncryptionService
	factorRepo repository.MFAFactorRepository
	codeRepo   repository.VerificationCodeRepository
	backupRepo repository.BackupCodeRepository
	userRepo   repository.UserRepository
	notifier   Notifier
	publisher  EventPublisher
	limiter    AttemptLimiter
	logger     *zap.Logger
}

// EnrollmentServiceConfig holds dependencies for NewEnrollmentService.
type EnrollmentServiceConfig struct {
	MFAConfig  *config.MFAConfig
	RateConfig *config.RateLimitConfig
	Generator  CodeGenerator
	TOTP       TOTPService
	Cipher     EncryptionService
	FactorRepo repository.MFAFactorRepository
	CodeRepo   repository.VerificationCodeRepository
	BackupRepo repository.BackupCodeRepository
	UserRepo   repository.UserRepository
	Notifier   Notifier
	Publisher  EventPublisher
	Limiter    AttemptLimiter
	Logger     *zap.Logger
}

func NewEnrollmentService(cfg EnrollmentServiceConfig) EnrollmentService {
	return &enrollmentService{
		cfg:        cfg.MFAConfig,
		rates:      cfg.RateConfig,
		generator:  cfg.Generator,
		totp:       cfg.TOTP,
		cipher:     cfg.Cipher,
		factorRepo: cfg.FactorRepo,
		codeRepo:   cfg.CodeRepo,
		backupRepo: cfg.BackupRepo,
		userRepo:   cfg.UserRepo,
		notifier:   cfg.Notifier,
		publisher:  cfg.Publisher,
		limiter:    cfg.Limiter,
		logger:     cfg.Logger.Named("enrollment_service"),
	}
}

func (s *enrollmentService) Setup(ctx context.Context, userID uuid.UUID, factorType models.MFAType) (*EnrollmentResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: loading user: %v", domainErrors.ErrDependency, err)
	}

	existing, err := s.factorRepo.FindByUserIDAndType(ctx, userID, factorType)
	if err != nil && !errors.Is(err, domainErrors.ErrFactorNotFound) {
		return nil, fmt.Errorf("%w: checking existing factor: %v", domainErrors.ErrDependency, err)
	}
	if existing != nil && existing.Verified {
		return nil, domainErrors.ErrFactorAlreadyVerified
	}

	result := &EnrollmentResult{Type: factorType}
	factor := &models.MFAFactor{
		ID:       uuid.New(),
		UserID:   userID,
		Type:     factorType,
		Verified: false,
	}

	switch factorType {
	case models.MFATypeApp:
		// The provisioning URI labels the account with the email address.
		if user.Email == "" {
			return nil, domainErrors.ErrEmailRequired
		}
		secret, err := s.generator.GenerateTOTPSecret()
		if err != nil {
			return nil, fmt.Errorf("failed to generate TOTP secret: %w", err)
		}
		uri, err := s.totp.ProvisioningURI(user.Email, secret)
		if err != nil {
			return nil, fmt.Errorf("failed to build provisioning URI: %w", err)
		}
		qr, err := s.totp.QRCode(uri)
		if err != nil {
			return nil, fmt.Errorf("failed to render provisioning QR code: %w", err)
		}
		encrypted, err := s.cipher.Encrypt(secret, s.cfg.SecretEncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt TOTP secret: %w", err)
		}
		factor.SecretEncrypted = encrypted
		result.Secret = secret
		result.OTPAuthURL = uri
		result.QRCode = qr

	case models.MFATypeSMS:
		if user.Phone == "" {
			return nil, domainErrors.ErrPhoneRequired
		}
		codeHash, err := s.issueCode(ctx, user, factorType)
		if err != nil {
			return nil, err
		}
		factor.SecretEncrypted = codeHash
		result.Message = "verification code sent to your phone"

	case models.MFATypeEmail:
		if user.Email == "" {
			return nil, domainErrors.ErrEmailRequired
		}
		codeHash, err := s.issueCode(ctx, user, factorType)
		if err != nil {
			return nil, err
		}
		factor.SecretEncrypted = codeHash
		result.Message = "verification code sent to your email"

	default:
		return nil, fmt.Errorf("%w: unsupported factor type %q", domainErrors.ErrInvalidRequest, factorType)
	}

	if err := s.factorRepo.Upsert(ctx, factor); err != nil {
		return nil, fmt.Errorf("%w: storing factor: %v", domainErrors.ErrDependency, err)
	}
	if err := s.userRepo.SetMFAStatus(ctx, userID, models.MFAStatusSetupRequired); err != nil {
		return nil, fmt.Errorf("%w: updating mfa status: %v", domainErrors.ErrDependency, err)
	}

	s.publish(ctx, models.AuthMFASetupInitiatedV1, userID, models.MFASetupInitiatedEvent{
		UserID:      userID.String(),
		Type:        factorType,
		InitiatedAt: time.Now().UTC(),
	})

	return result, nil
}

func (s *enrollmentService) Resend(ctx context.Context, userID uuid.UUID, factorType models.MFAType) error {
	if factorType != models.MFATypeSMS && factorType != models.MFATypeEmail {
		return fmt.Errorf("%w: resend only applies to sms and email factors", domainErrors.ErrInvalidRequest)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.factorRepo.FindByUserIDAndType(ctx, userID, factorType); err != nil {
		if errors.Is(err, domainErrors.ErrFactorNotFound) {
			return err
		}
		return fmt.Errorf("%w: loading factor: %v", domainErrors.ErrDependency, err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("%w: loading user: %v", domainErrors.ErrDependency, err)
	}
	if factorType == models.MFATypeSMS && user.Phone == "" {
		return domainErrors.ErrPhoneRequired
	}
	if factorType == models.MFATypeEmail && user.Email == "" {
		return domainErrors.ErrEmailRequired
	}

	_, err = s.issueCode(ctx, user, factorType)
	return err
}

func (s *enrollmentService) Disable(ctx context.Context, userID uuid.UUID, factorType models.MFAType) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	deleted, err := s.factorRepo.DeleteByUserIDAndType(ctx, userID, factorType)
	if err != nil {
		return fmt.Errorf("%w: deleting factor: %v", domainErrors.ErrDependency, err)
	}
	if !deleted {
		return domainErrors.ErrFactorNotFound
	}

	if _, err := s.codeRepo.DeleteByUserIDAndType(ctx, userID, factorType); err != nil {
		s.logger.Warn("Failed to clear outstanding codes on disable",
			zap.Error(err), zap.String("user_id", userID.String()))
	}

	// Recovery codes exist to stand in for the enrolled factor; they go with
	// it.
	if s.backupRepo != nil {
		if _, err := s.backupRepo.DeleteByUserID(ctx, userID); err != nil {
			s.logger.Warn("Failed to clear backup codes on disable",
				zap.Error(err), zap.String("user_id", userID.String()))
		}
	}

	s.publish(ctx, models.AuthMFADisabledV1, userID, models.MFADisabledEvent{
		UserID:     userID.String(),
		Type:       factorType,
		DisabledAt: time.Now().UTC(),
	})

	return nil
}

// issueCode generates, stores and dispatches a one-time code. Any previously
// outstanding code for the same (user, type) is superseded first so only the
// latest issue can redeem.
func (s *enrollmentService) issueCode(ctx context.Context, user *models.User, factorType models.MFAType) (string, error) {
	if s.limiter != nil && s.rates != nil && s.rates.Enabled && s.rates.SendPerUser.Enabled {
		key := fmt.Sprintf("mfa:send:%s:%s", user.ID, factorType)
		allowed, err := s.limiter.Allow(ctx, key, s.rates.SendPerUser.Limit, s.rates.SendPerUser.Window)
		if err != nil {
			s.logger.Warn("Send rate limiter unavailable", zap.Error(err))
		}
		if !allowed {
			return "", domainErrors.ErrRateLimited
		}
	}

	code, err := s.generator.GenerateNumericCode(models.VerificationCodeLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	codeHash := HashCode(code)
	expiresAt := time.Now().UTC().Add(s.cfg.CodeTTL)

	if _, err := s.codeRepo.DeleteByUserIDAndType(ctx, user.ID, factorType); err != nil {
		return "", fmt.Errorf("%w: superseding previous codes: %v", domainErrors.ErrDependency, err)
	}
	vc := &models.VerificationCode{
		ID:        uuid.New(),
		UserID:    user.ID,
		Type:      factorType,
		CodeHash:  codeHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.codeRepo.Create(ctx, vc); err != nil {
		return "", fmt.Errorf("%w: storing verification code: %v", domainErrors.ErrDependency, err)
	}

	recipient := user.Phone
	if factorType == models.MFATypeEmail {
		recipient = user.Email
	}
	if err := s.notifier.Send(ctx, user.ID, factorType, recipient, code, expiresAt); err != nil {
		return "", fmt.Errorf("%w: dispatching verification code: %v", domainErrors.ErrDependency, err)
	}

	return codeHash, nil
}

func (s *enrollmentService) publish(ctx context.Context, eventType string, userID uuid.UUID, payload interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, eventType, userID.String(), payload); err != nil {
		s.logger.Warn("Failed to publish event",
			zap.Error(err), zap.String("event_type", eventType), zap.String("user_id", userID.String()))
	}
}

func (s *enrollmentService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := s.cfg.StoreTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

var _ EnrollmentService = (*enrollmentService)(nil)

package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/shoplite/auth-service/internal/domain/models"
)

// MockMFAFactorRepository is a mock implementation of repository.MFAFactorRepository.
type MockMFAFactorRepository struct {
	mock.Mock
}

func (m *MockMFAFactorRepository) FindByUserIDAndType(ctx context.Context, userID uuid.UUID, factorType models.MFAType) (*models.MFAFactor, error) {
	args := m.Called(ctx, userID, factorType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MFAFactor), args.Error(1)
}

func (m *MockMFAFactorRepository) Upsert(ctx context.Context, factor *models.MFAFactor) error {
	args := m.Called(ctx, factor)
	return args.Error(0)
}

func (m *MockMFAFactorRepository) MarkVerified(ctx context.Context, userID uuid.UUID, factorType models.MFAType, usedAt time.Time) error {
	args := m.Called(ctx, userID, factorType, usedAt)
	return args.Error(0)
}

func (m *MockMFAFactorRepository) Touch(ctx context.Context, userID uuid.UUID, factorType models.MFAType, usedAt time.Time) error {
	args := m.Called(ctx, userID, factorType, usedAt)
	return args.Error(0)
}

func (m *MockMFAFactorRepository) DeleteByUserIDAndType(ctx context.Context, userID uuid.UUID, factorType models.MFAType) (bool, error) {
	args := m.Called(ctx, userID, factorType)
	return args.Bool(0), args.Error(1)
}

// MockVerificationCodeRepository is a mock implementation of repository.VerificationCodeRepository.
type MockVerificationCodeRepository struct {
	mock.Mock
}

func (m *MockVerificationCodeRepository) Create(ctx context.Context, code *models.VerificationCode) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockVerificationCodeRepository) ConsumeIfMatch(ctx context.Context, userID uuid.UUID, codeType models.MFAType, codeHash string) (bool, error) {
	args := m.Called(ctx, userID, codeType, codeHash)
	return args.Bool(0), args.Error(1)
}

func (m *MockVerificationCodeRepository) DeleteByUserIDAndType(ctx context.Context, userID uuid.UUID, codeType models.MFAType) (int64, error) {
	args := m.Called(ctx, userID, codeType)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockVerificationCodeRepository) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) SetMFAStatus(ctx context.Context, id uuid.UUID, status models.MFAStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// MockCodeGenerator is a mock implementation of CodeGenerator.
type MockCodeGenerator struct {
	mock.Mock
}

func (m *MockCodeGenerator) GenerateTOTPSecret() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockCodeGenerator) GenerateNumericCode(digits int) (string, error) {
	args := m.Called(digits)
	return args.String(0), args.Error(1)
}

func (m *MockCodeGenerator) GenerateBackupCode() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

// MockBackupCodeRepository is a mock implementation of repository.BackupCodeRepository.
type MockBackupCodeRepository struct {
	mock.Mock
}

func (m *MockBackupCodeRepository) Replace(ctx context.Context, userID uuid.UUID, codes []*models.MFABackupCode) error {
	args := m.Called(ctx, userID, codes)
	return args.Error(0)
}

func (m *MockBackupCodeRepository) CountActive(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockBackupCodeRepository) ConsumeIfMatch(ctx context.Context, userID uuid.UUID, codeHash string) (bool, error) {
	args := m.Called(ctx, userID, codeHash)
	return args.Bool(0), args.Error(1)
}

func (m *MockBackupCodeRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockTOTPService is a mock implementation of TOTPService.
type MockTOTPService struct {
	mock.Mock
}

func (m *MockTOTPService) ProvisioningURI(accountName string, secretBase32 string) (string, error) {
	args := m.Called(accountName, secretBase32)
	return args.String(0), args.Error(1)
}

func (m *MockTOTPService) QRCode(uri string) (string, error) {
	args := m.Called(uri)
	return args.String(0), args.Error(1)
}

func (m *MockTOTPService) ValidateCode(secretBase32 string, code string) (bool, error) {
	args := m.Called(secretBase32, code)
	return args.Bool(0), args.Error(1)
}

// MockEncryptionService is a mock implementation of EncryptionService.
type MockEncryptionService struct {
	mock.Mock
}

func (m *MockEncryptionService) Encrypt(plainText string, keyHex string) (string, error) {
	args := m.Called(plainText, keyHex)
	return args.String(0), args.Error(1)
}

func (m *MockEncryptionService) Decrypt(cipherTextBase64 string, keyHex string) (string, error) {
	args := m.Called(cipherTextBase64, keyHex)
	return args.String(0), args.Error(1)
}

// MockElevationService is a mock implementation of ElevationService.
type MockElevationService struct {
	mock.Mock
}

func (m *MockElevationService) Issue(userID uuid.UUID, sessionID string) (string, time.Time, error) {
	args := m.Called(userID, sessionID)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockElevationService) Validate(token string) (*ElevationClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ElevationClaims), args.Error(1)
}

// MockNotifier is a mock implementation of Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, userID uuid.UUID, channel models.MFAType, recipient string, code string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, channel, recipient, code, expiresAt)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher.
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, eventType string, subject string, payload interface{}) error {
	args := m.Called(ctx, eventType, subject, payload)
	return args.Error(0)
}

// MockAttemptLimiter is a mock implementation of AttemptLimiter.
type MockAttemptLimiter struct {
	mock.Mock
}

func (m *MockAttemptLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

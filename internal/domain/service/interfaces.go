package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shoplite/auth-service/internal/domain/models"
)

// CodeGenerator produces cryptographically random enrollment material. Pure
// generation, no side effects; entropy exhaustion surfaces as an error, never
// a weaker fallback.
type CodeGenerator interface {
	// GenerateTOTPSecret returns at least 160 bits of randomness encoded as
	// unpadded uppercase base32.
	GenerateTOTPSecret() (string, error)

	// GenerateNumericCode returns a uniformly random, zero-padded decimal
	// string of fixed width.
	GenerateNumericCode(digits int) (string, error)

	// GenerateBackupCode returns a random recovery code in grouped uppercase
	// base32, e.g. "JBSWY3DP-EHPK3PXP".
	GenerateBackupCode() (string, error)
}

// TOTPService validates time-step codes and renders provisioning material for
// authenticator apps. Validation is stateless computation over the stored
// secret; it never mutates state.
type TOTPService interface {
	ProvisioningURI(accountName string, secretBase32 string) (string, error)

	// QRCode renders a provisioning URI as a PNG data URL.
	QRCode(uri string) (string, error)

	// ValidateCode checks a submitted code against the current time step with
	// a tolerance of one step on either side.
	ValidateCode(secretBase32 string, code string) (bool, error)
}

// ElevationClaims are the claims carried by the mfa_verified cookie token.
type ElevationClaims struct {
	UserID    uuid.UUID
	SessionID string
	ExpiresAt time.Time
}

// ElevationService issues and validates the short-lived credential asserting
// that the second factor was satisfied for a session. It augments primary
// authentication and is never an identity credential on its own. Expiry is
// absolute from issuance, with no sliding renewal.
type ElevationService interface {
	Issue(userID uuid.UUID, sessionID string) (token string, expiresAt time.Time, err error)
	Validate(token string) (*ElevationClaims, error)
}

// SessionClaims is the validated snapshot of a bearer token minted by the
// external session provider.
type SessionClaims struct {
	UserID    uuid.UUID
	SessionID string
	Role      models.Role
}

// TokenVerifier validates primary-session bearer tokens. The session provider
// itself is an external collaborator; this service only checks its tokens.
type TokenVerifier interface {
	ValidateAccessToken(token string) (*SessionClaims, error)
}

// EncryptionService protects TOTP seeds at rest. The key is passed per call
// so the caller owns key management.
type EncryptionService interface {
	Encrypt(plainText string, keyHex string) (string, error)
	Decrypt(cipherTextBase64 string, keyHex string) (string, error)
}

// Notifier dispatches one-time codes over an out-of-band channel. Transport
// is out of scope, but a dispatch failure must propagate as an enrollment
// failure rather than being swallowed.
type Notifier interface {
	Send(ctx context.Context, userID uuid.UUID, channel models.MFAType, recipient string, code string, expiresAt time.Time) error
}

// EventPublisher emits domain events to the platform event bus. Publishing is
// best effort for lifecycle events; callers decide whether a failure is fatal.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, subject string, payload interface{}) error
}

// AttemptLimiter bounds repeated attempts per key within a fixed window.
type AttemptLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

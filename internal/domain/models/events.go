package models

import "time"

// Event type identifiers published to the auth events topic.
const (
	AuthMFASetupInitiatedV1 = "auth.mfa.setup_initiated.v1"
	AuthMFAEnabledV1        = "auth.mfa.enabled.v1"
	AuthMFAVerifiedV1       = "auth.mfa.verified.v1"
	AuthMFADisabledV1       = "auth.mfa.disabled.v1"
	AuthMFACodeIssuedV1     = "auth.mfa.code_issued.v1"

	AuthMFABackupCodesGeneratedV1 = "auth.mfa.backup_codes_generated.v1"
	AuthMFABackupCodeUsedV1       = "auth.mfa.backup_code_used.v1"
)

// MFASetupInitiatedEvent is published when enrollment material is issued.
type MFASetupInitiatedEvent struct {
	UserID      string    `json:"user_id"`
	Type        MFAType   `json:"type"`
	InitiatedAt time.Time `json:"initiated_at"`
}

// MFAEnabledEvent is published on the first successful verification of a
// pending factor.
type MFAEnabledEvent struct {
	UserID    string    `json:"user_id"`
	Type      MFAType   `json:"type"`
	EnabledAt time.Time `json:"enabled_at"`
}

// MFAVerifiedEvent is published on every successful verification.
type MFAVerifiedEvent struct {
	UserID     string    `json:"user_id"`
	Type       MFAType   `json:"type"`
	VerifiedAt time.Time `json:"verified_at"`
}

// MFADisabledEvent is published when a factor is removed.
type MFADisabledEvent struct {
	UserID     string    `json:"user_id"`
	Type       MFAType   `json:"type"`
	DisabledAt time.Time `json:"disabled_at"`
}

// MFABackupCodesGeneratedEvent is published when a recovery code batch is
// (re)issued. The codes themselves never leave the API response.
type MFABackupCodesGeneratedEvent struct {
	UserID      string    `json:"user_id"`
	Count       int       `json:"count"`
	GeneratedAt time.Time `json:"generated_at"`
}

// MFABackupCodeUsedEvent is published when a recovery code is redeemed.
type MFABackupCodeUsedEvent struct {
	UserID string    `json:"user_id"`
	UsedAt time.Time `json:"used_at"`
}

// MFACodeIssuedEvent carries a one-time code to the notification pipeline.
// The code itself never appears in API responses; delivery transport is owned
// by the downstream consumer.
type MFACodeIssuedEvent struct {
	UserID    string    `json:"user_id"`
	Channel   MFAType   `json:"channel"`
	Recipient string    `json:"recipient"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
	IssuedAt  time.Time `json:"issued_at"`
}

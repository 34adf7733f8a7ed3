package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the MFA and permission core. Services wrap these with
// fmt.Errorf("...: %w", err); the HTTP layer maps them to status codes.
var (
	ErrInternal       = errors.New("internal error")
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("resource not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("resource already exists")

	// ErrFactorNotFound is returned when a user has no factor of the
	// requested type.
	ErrFactorNotFound = errors.New("mfa factor not found")

	// ErrFactorAlreadyVerified guards re-enrollment: a verified factor must
	// be disabled before a new secret is issued for the same type.
	ErrFactorAlreadyVerified = errors.New("mfa factor already verified")

	// ErrInvalidCode deliberately covers wrong, expired and already-consumed
	// codes. Callers must not be able to tell which sub-condition failed; the
	// concrete reason is only logged internally.
	ErrInvalidCode = errors.New("invalid verification code")

	// ErrPhoneRequired is the precondition failure for SMS enrollment
	// without a phone number on file.
	ErrPhoneRequired = errors.New("verified phone number required")

	// ErrEmailRequired mirrors ErrPhoneRequired for the email channel.
	ErrEmailRequired = errors.New("email address required")

	ErrUserNotFound = errors.New("user not found")

	// ErrMFANotEnabled guards backup code management: recovery codes only
	// exist for accounts that finished enabling a factor.
	ErrMFANotEnabled = errors.New("mfa is not enabled")

	// ErrElevationRequired is returned when a protected route is reached
	// without a valid session elevation token.
	ErrElevationRequired = errors.New("mfa elevation required")
	ErrElevationInvalid  = errors.New("mfa elevation token invalid or expired")

	// ErrRateLimited is returned when verification or code-send attempts
	// exceed the configured window.
	ErrRateLimited = errors.New("too many attempts")

	// ErrDependency wraps store or notifier failures; the transport layer
	// surfaces these as 5xx without retrying side effects internally.
	ErrDependency = errors.New("dependency failure")
)

// AppError attaches an HTTP status and a stable API code to an error.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
	Code       string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError builds an AppError wrapping err.
func NewAppError(err error, message string, statusCode int, code string) *AppError {
	return &AppError{Err: err, Message: message, StatusCode: statusCode, Code: code}
}

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrFactorNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsConflict reports whether err is a conflict-class error.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrFactorAlreadyVerified)
}

// IsPrecondition reports whether err is a failed-precondition error.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrPhoneRequired) ||
		errors.Is(err, ErrEmailRequired) ||
		errors.Is(err, ErrMFANotEnabled)
}

// IsUnauthorized reports whether err is an authentication failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrElevationRequired) ||
		errors.Is(err, ErrElevationInvalid)
}

package deviceauth

import "errors"

// Error kinds. Every error returned by Service matches exactly one of them
// with errors.Is; transports map kinds to status codes.
var (
	ErrValidation            = errors.New("validation failed")
	ErrNotFound              = errors.New("not found")
	ErrGone                  = errors.New("gone")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrInternal              = errors.New("internal error")
)

var (
	ErrUserNotFound      = kindError(ErrNotFound, "user not found")
	ErrDeviceNotFound    = kindError(ErrNotFound, "device not found")
	ErrChallengeNotFound = kindError(ErrNotFound, "challenge not found")
	ErrSecretNotFound    = kindError(ErrNotFound, "totp secret not found")

	// ErrRecoveryCodeNotFound is returned by stores; Service reports
	// ErrInvalidRecoveryCode instead.
	ErrRecoveryCodeNotFound = kindError(ErrNotFound, "recovery code not found")

	ErrChallengeGone = kindError(ErrGone, "challenge already used or expired")

	ErrInvalidSignature = kindError(ErrUnauthorized, "invalid signature")
	ErrDeviceMismatch   = kindError(ErrUnauthorized, "device does not belong to the challenge user")
	ErrInvalidCode      = kindError(ErrUnauthorized, "invalid totp code")

	ErrInvalidRecoveryCode = kindError(ErrUnauthorized, "invalid recovery code")

	ErrNoTrustedDevice = kindError(ErrDependencyUnavailable, "no trusted device")

	ErrInvalidSecret    = kindError(ErrValidation, "totp secret is not valid base32")
	ErrInvalidURI       = kindError(ErrValidation, "invalid otpauth uri")
	ErrInvalidPublicKey = kindError(ErrValidation, "public key must be a DER-encoded P-256 key")
	ErrMissingAccount   = kindError(ErrValidation, "account name is required")

	ErrInvalidSealingKey = errors.New("sealing key must be 32 bytes")
)

// classified is a specific error that also matches its kind.
type classified struct {
	kind error
	msg  string
}

func kindError(kind error, msg string) error {
	return &classified{kind: kind, msg: msg}
}

func (e *classified) Error() string { return e.msg }

func (e *classified) Unwrap() error { return e.kind }

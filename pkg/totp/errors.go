package totp

import "errors"

var (
	ErrInvalidSecret             = errors.New("invalid secret")
	ErrInvalidPeriod             = errors.New("invalid period, must be greater than 0")
	ErrFailedToGenerateSecretKey = errors.New("failed to generate TOTP secret key")
	ErrMissingSecret             = errors.New("missing secret")
	ErrMissingAccountName        = errors.New("missing account name")
	ErrMissingIssuer             = errors.New("missing issuer")
	ErrEncryptionKeyNotSet       = errors.New("TOTP encryption key not set")
	ErrFailedToLoadEncryptionKey = errors.New("failed to load encryption key")

	ErrInvalidRecoveryCodeCount     = errors.New("recovery code count must be at least 1")
	ErrFailedToGenerateRecoveryCode = errors.New("failed to generate recovery code")
)

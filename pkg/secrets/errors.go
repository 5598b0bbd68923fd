package secrets

import "errors"

var (
	// Key validation errors
	ErrInvalidKey    = errors.New("invalid key: must be 32 bytes")
	ErrInvalidLength = errors.New("invalid output length: must be greater than 0")

	// Sealing errors
	ErrSealFailed           = errors.New("seal failed")
	ErrAuthenticationFailed = errors.New("message authentication failed")

	ErrKeyDerivationFailed = errors.New("key derivation failed")
	ErrRandomFailed        = errors.New("secure random source failed")
	ErrKeyDecodingFailed   = errors.New("failed to decode key")

	ErrInvalidPublicKey = errors.New("invalid public key: must be a DER-encoded P-256 key")
)

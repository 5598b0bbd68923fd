// Package totp implements RFC 6238 time-based one-time passwords.
//
// Codes are computed with HMAC-SHA1, HMAC-SHA256 or HMAC-SHA512 over an
// 8-byte big-endian time counter (floor(unix / period)), reduced by RFC 4226
// dynamic truncation. Secrets are Base32 text decoded by pkg/base32, or raw key
// bytes when the caller already holds them (for example after opening a
// sealed secret with pkg/secrets).
//
// # Usage
//
//	secret, _ := totp.GenerateSecretKey()
//
//	uri, _ := totp.GetTOTPURI(totp.TOTPParams{
//	    Secret:      secret,
//	    AccountName: "alice@example.com",
//	    Issuer:      "Acme",
//	})
//
//	code, remaining, err := totp.CodeWithRemaining(secret, totp.SHA1, 6, 30, time.Now())
//
// The sealing key for persisted secrets is read from TOTP_ENCRYPTION_KEY
// (base64, 32 bytes) through Config and LoadEncryptionKey.
//
// # Digits
//
// The code modulus is clamped to 6..8 digits while zero padding uses the
// requested width unchanged. Callers that need a well-formed code should pass
// 6 or 8.
//
// # See Also
//
//   - RFC 4226 – HMAC-Based One-Time Password (HOTP) Algorithm
//   - RFC 6238 – Time-Based One-Time Password (TOTP) Algorithm
package totp

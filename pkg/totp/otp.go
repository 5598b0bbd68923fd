package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/dmitrymomot/devicekey/pkg/base32"
)

const (
	DefaultDigits    = 6    // Standard 6-digit TOTP codes
	DefaultPeriod    = 30   // 30-second validity window (RFC 6238 standard)
	DefaultAlgorithm = SHA1 // HMAC-SHA1 algorithm (RFC 6238 standard)

	minDigits = 6
	maxDigits = 8
)

// TOTPParams contains the parameters for TOTP URI generation
type TOTPParams struct {
	Secret      string    // Base32-encoded TOTP secret key (required)
	AccountName string    // User identifier like email (required)
	Issuer      string    // Service name displayed in authenticator apps (required)
	Algorithm   Algorithm // HMAC algorithm (optional, defaults to SHA1)
	Digits      int       // Number of digits in generated codes (optional, defaults to 6)
	Period      int       // Code validity period in seconds (optional, defaults to 30)
}

// Validate ensures all required TOTP parameters are present and valid
func (p TOTPParams) Validate() error {
	if p.Secret == "" {
		return ErrMissingSecret
	}
	if !base32.IsStructurallyValid(p.Secret) {
		return ErrInvalidSecret
	}
	if p.AccountName == "" {
		return ErrMissingAccountName
	}
	if p.Issuer == "" {
		return ErrMissingIssuer
	}
	return nil
}

// GetDefaults returns a copy with RFC 6238 standard defaults applied to zero-valued fields
func (p TOTPParams) GetDefaults() TOTPParams {
	if p.Algorithm == "" {
		p.Algorithm = DefaultAlgorithm
	}
	if p.Digits == 0 {
		p.Digits = DefaultDigits
	}
	if p.Period == 0 {
		p.Period = DefaultPeriod
	}
	return p
}

// GenerateSecretKey generates a new Base32-encoded 160-bit secret key.
func GenerateSecretKey() (string, error) {
	secret := make([]byte, 20)
	if _, err := rand.Read(secret); err != nil {
		return "", errors.Join(ErrFailedToGenerateSecretKey, err)
	}
	return base32.Encode(secret), nil
}

// GetTOTPURI creates a properly encoded TOTP URI for use with authenticator apps.
// The URI format follows the Key Uri Format specification:
// https://github.com/google/google-authenticator/wiki/Key-Uri-Format
func GetTOTPURI(params TOTPParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}

	params = params.GetDefaults()

	label := fmt.Sprintf("%s:%s",
		url.PathEscape(params.Issuer),
		url.PathEscape(params.AccountName),
	)

	query := url.Values{}
	query.Set("secret", params.Secret)
	query.Set("issuer", params.Issuer)
	query.Set("algorithm", params.Algorithm.String())
	query.Set("digits", fmt.Sprintf("%d", params.Digits))
	query.Set("period", fmt.Sprintf("%d", params.Period))

	return fmt.Sprintf("otpauth://totp/%s?%s", label, query.Encode()), nil
}

// Code returns the TOTP for the Base32 secret at the given instant.
// It fails with ErrInvalidSecret when the secret does not decode.
func Code(secret string, alg Algorithm, digits, period int, at time.Time) (string, error) {
	key, err := base32.Decode(secret)
	if err != nil {
		return "", errors.Join(ErrInvalidSecret, err)
	}
	return CodeFromKey(key, alg, digits, period, at)
}

// CodeFromKey returns the TOTP for raw key bytes at the given instant.
//
// The modulus is 10^digits with digits clamped to [6, 8], while the zero
// padding uses the raw digits value. The clamp only matters outside that
// range: digits=4 still yields a 6-digit value and digits=10 pads an 8-digit
// value to 10 characters. Existing codes depend on this.
//
// The counter is floor(unix/period), so instants before the epoch fall into
// negative windows encoded as two's complement.
func CodeFromKey(key []byte, alg Algorithm, digits, period int, at time.Time) (string, error) {
	if period <= 0 {
		return "", ErrInvalidPeriod
	}

	value := hotp(key, alg, uint64(counter(at, period)))

	modulus := uint32(1)
	for range min(max(digits, minDigits), maxDigits) {
		modulus *= 10
	}

	return fmt.Sprintf("%0*d", digits, value%modulus), nil
}

// counter returns floor(unix seconds / period).
func counter(at time.Time, period int) int64 {
	p := int64(period)
	c := at.Unix() / p
	if at.Unix()%p < 0 {
		c--
	}
	return c
}

// RemainingSeconds returns how long the code for at stays valid, in [1, period].
func RemainingSeconds(period int, at time.Time) int {
	if period <= 0 {
		return 0
	}
	p := int64(period)
	rem := at.Unix() % p
	if rem < 0 {
		rem += p
	}
	return int(p - rem)
}

// CodeWithRemaining pairs Code with RemainingSeconds.
func CodeWithRemaining(secret string, alg Algorithm, digits, period int, at time.Time) (string, int, error) {
	code, err := Code(secret, alg, digits, period, at)
	if err != nil {
		return "", 0, err
	}
	return code, RemainingSeconds(period, at), nil
}

// hotp implements RFC 4226 dynamic truncation over an 8-byte big-endian counter.
func hotp(key []byte, alg Algorithm, counter uint64) uint32 {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	mac := hmac.New(alg.hash(), key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	return binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff
}

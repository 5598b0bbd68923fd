package totp

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// GenerateRecoveryCodes returns count single-use backup codes. Each code is
// 16 upper-case hex characters (64 bits of entropy) grouped as XXXX-XXXX-XXXX-XXXX.
func GenerateRecoveryCodes(count int) ([]string, error) {
	if count < 1 {
		return nil, ErrInvalidRecoveryCodeCount
	}

	codes := make([]string, count)
	for i := range count {
		var b [8]byte
		if _, err := rand.Read(b[:]); err != nil {
			return nil, errors.Join(ErrFailedToGenerateRecoveryCode, err)
		}
		raw := fmt.Sprintf("%X", b[:])
		codes[i] = raw[0:4] + "-" + raw[4:8] + "-" + raw[8:12] + "-" + raw[12:16]
	}
	return codes, nil
}

// HashRecoveryCode returns the hex SHA-256 of the normalized code for storage.
// Case, whitespace and hyphens do not affect the hash.
func HashRecoveryCode(code string) string {
	hash := sha256.Sum256([]byte(normalizeRecoveryCode(code)))
	return hex.EncodeToString(hash[:])
}

// VerifyRecoveryCode reports whether code hashes to hashedCode, comparing in
// constant time.
func VerifyRecoveryCode(code, hashedCode string) bool {
	return subtle.ConstantTimeCompare([]byte(HashRecoveryCode(code)), []byte(hashedCode)) == 1
}

func normalizeRecoveryCode(code string) string {
	return strings.ToUpper(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' {
			return -1
		}
		return r
	}, code))
}

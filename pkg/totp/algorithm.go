package totp

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"strings"
)

// Algorithm names the HMAC hash function.
type Algorithm string

const (
	SHA1   Algorithm = "SHA1"
	SHA256 Algorithm = "SHA256"
	SHA512 Algorithm = "SHA512"
)

// ParseAlgorithm matches s case-insensitively against the supported algorithms.
func ParseAlgorithm(s string) (Algorithm, bool) {
	switch Algorithm(strings.ToUpper(strings.TrimSpace(s))) {
	case SHA1:
		return SHA1, true
	case SHA256:
		return SHA256, true
	case SHA512:
		return SHA512, true
	}
	return "", false
}

func (a Algorithm) String() string {
	return string(a)
}

// hash returns the constructor for a; unknown values fall back to SHA1.
func (a Algorithm) hash() func() hash.Hash {
	switch a {
	case SHA256:
		return sha256.New
	case SHA512:
		return sha512.New
	default:
		return sha1.New
	}
}

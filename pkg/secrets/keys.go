package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the sealing key size for AES-256.
	KeySize = 32

	// kdfInfo separates vault keys from any other HKDF output of the same passphrase.
	kdfInfo = "devicekey-vault-kdf-v1"
)

// KDFParams describes a key derivation. Only Salt and OutputLength are used by
// the HKDF variant.
type KDFParams struct {
	Salt         []byte // per-vault unique salt, 16-32 bytes
	OutputLength int
	Iterations   int // reserved
	Memory       int // reserved, KiB
	Parallelism  int // reserved
}

// DeriveKey derives OutputLength bytes from passphrase with HKDF-SHA-256.
func DeriveKey(passphrase []byte, params KDFParams) ([]byte, error) {
	if params.OutputLength <= 0 {
		return nil, ErrInvalidLength
	}

	reader := hkdf.New(sha256.New, passphrase, params.Salt, []byte(kdfInfo))

	key := make([]byte, params.OutputLength)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}

	return key, nil
}

// GenerateKey creates a new random 32-byte sealing key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, errors.Join(ErrRandomFailed, err)
	}
	return key, nil
}

// EncodeKey returns the base64 form used in configuration.
func EncodeKey(key []byte) string {
	return base64.StdEncoding.EncodeToString(key)
}

// ParseKey decodes a base64 sealing key and checks its length.
func ParseKey(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Join(ErrKeyDecodingFailed, err)
	}
	if len(key) != KeySize {
		return nil, errors.Join(ErrKeyDecodingFailed, ErrInvalidKey)
	}
	return key, nil
}

// Wipe zeroes sensitive material once it is no longer needed.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

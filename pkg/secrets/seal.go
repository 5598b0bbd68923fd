package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"
)

// Seal encrypts secret under key with AES-256-GCM.
// Returns nonce || ciphertext || tag.
func Seal(secret, key []byte) ([]byte, error) {
	aesGCM, err := newGCM(key)
	if err != nil {
		if errors.Is(err, ErrInvalidKey) {
			return nil, err
		}
		return nil, errors.Join(ErrSealFailed, err)
	}

	nonce := make([]byte, aesGCM.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.Join(ErrSealFailed, err)
	}

	return aesGCM.Seal(nonce, nonce, secret, nil), nil
}

// Open reverses Seal. Any failure to authenticate combined under key,
// including truncated input, yields ErrAuthenticationFailed.
func Open(combined, key []byte) ([]byte, error) {
	aesGCM, err := newGCM(key)
	if err != nil {
		if errors.Is(err, ErrInvalidKey) {
			return nil, err
		}
		return nil, ErrAuthenticationFailed
	}

	nonceSize := aesGCM.NonceSize()
	if len(combined) < nonceSize+aesGCM.Overhead() {
		return nil, ErrAuthenticationFailed
	}

	nonce, ciphertext := combined[:nonceSize], combined[nonceSize:]
	plain, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}

	return plain, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	return cipher.NewGCM(block)
}

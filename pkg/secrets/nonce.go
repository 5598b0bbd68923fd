package secrets

import (
	"crypto/rand"
	"errors"
)

// NonceSize is the length of challenge nonces.
const NonceSize = 16

// RandomNonce returns NonceSize fresh bytes from the system CSPRNG.
func RandomNonce() ([]byte, error) {
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, errors.Join(ErrRandomFailed, err)
	}
	return nonce, nil
}

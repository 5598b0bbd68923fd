package totp

import (
	"errors"

	"github.com/dmitrymomot/devicekey/pkg/secrets"
)

// Config holds the server-side sealing key for stored TOTP secrets.
// The key is an external secret: this package only reads it.
type Config struct {
	EncryptionKey string `env:"TOTP_ENCRYPTION_KEY,required"` // base64, 32 bytes
}

// LoadEncryptionKey decodes the sealing key from cfg.
func LoadEncryptionKey(cfg Config) ([]byte, error) {
	if cfg.EncryptionKey == "" {
		return nil, errors.Join(ErrFailedToLoadEncryptionKey, ErrEncryptionKeyNotSet)
	}

	key, err := secrets.ParseKey(cfg.EncryptionKey)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadEncryptionKey, err)
	}

	return key, nil
}

package push

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	HeaderSignature = "X-Push-Signature"
	HeaderTimestamp = "X-Push-Timestamp"
	HeaderID        = "X-Push-ID"
)

// Signature binds a gateway request body to a timestamp.
type Signature struct {
	Value     string
	Timestamp int64
	ID        string
}

// Headers returns the HTTP headers carrying the signature.
func (s Signature) Headers() map[string]string {
	return map[string]string{
		HeaderSignature: s.Value,
		HeaderTimestamp: strconv.FormatInt(s.Timestamp, 10),
		HeaderID:        s.ID,
	}
}

// Sign computes HMAC-SHA256(secret, timestamp + "." + payload).
func Sign(secret string, payload []byte, at time.Time) (Signature, error) {
	if secret == "" {
		return Signature{}, ErrInvalidSecret
	}
	ts := at.Unix()
	return Signature{
		Value:     mac(secret, ts, payload),
		Timestamp: ts,
		ID:        uuid.New().String(),
	}, nil
}

// Verify checks sig against payload. A positive maxAge rejects signatures
// older than maxAge or more than a minute in the future relative to now.
func Verify(secret string, payload []byte, sig Signature, maxAge time.Duration, now time.Time) error {
	if secret == "" {
		return ErrInvalidSecret
	}

	if maxAge > 0 {
		age := now.Sub(time.Unix(sig.Timestamp, 0))
		if age > maxAge || age < -time.Minute {
			return fmt.Errorf("%w: timestamp outside allowed window", ErrSignatureFailed)
		}
	}

	if !hmac.Equal([]byte(mac(secret, sig.Timestamp, payload)), []byte(sig.Value)) {
		return ErrSignatureFailed
	}
	return nil
}

func mac(secret string, ts int64, payload []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(h, "%d.", ts)
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

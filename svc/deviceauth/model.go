package deviceauth

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/devicekey/pkg/totp"
)

const (
	// DefaultChallengeTTL is how long a challenge stays approvable.
	DefaultChallengeTTL = 60 * time.Second

	// TrustThreshold is the minimum attestation score of a trusted device.
	TrustThreshold = 50

	// DefaultRecoveryCodes is how many recovery codes EnrollTOTP issues.
	DefaultRecoveryCodes = 10
)

// Device is a registered authenticator belonging to one user.
type Device struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	PublicKey        []byte // DER SubjectPublicKeyInfo, P-256
	PushToken        string
	ModelHash        string
	OSHash           string
	TrustLevel       int // 1 when AttestationScore >= TrustThreshold, else 0
	AttestationScore int // 0..100
	LastSeenAt       time.Time
	CreatedAt        time.Time
}

func (d Device) Trusted() bool {
	return d.TrustLevel >= 1
}

// Challenge is a single-use sign-in request bound to one device.
type Challenge struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	DeviceID  uuid.UUID
	Nonce     []byte
	CreatedAt time.Time
	ExpiresAt time.Time
	Used      bool
}

// ApprovableAt reports whether the challenge can still be approved at now.
func (c Challenge) ApprovableAt(now time.Time) bool {
	return !c.Used && now.Before(c.ExpiresAt)
}

// ChallengeView is the public projection of a pending challenge.
type ChallengeView struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	NonceBase64 string
}

// TOTPSecret is a user's sealed TOTP key with its generation parameters.
type TOTPSecret struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Sealed    []byte // nonce || ciphertext || tag
	Algorithm totp.Algorithm
	Digits    int
	Period    int
	CreatedAt time.Time
}

type RegisterDeviceParams struct {
	UserID           uuid.UUID
	PublicKey        []byte
	PushToken        string
	ModelHash        string
	OSHash           string
	AttestationToken string
}

// Enrollment is a freshly generated TOTP secret ready for an authenticator app.
type Enrollment struct {
	Secret string // Base32
	URI    string // otpauth://
	QRCode string // PNG data URI

	// RecoveryCodes are shown once; only their hashes are stored.
	RecoveryCodes []string
}

// SignedMessage returns the bytes a device signs to approve a challenge:
// the canonical text of userID, then deviceID, then the raw nonce, with no
// separators.
func SignedMessage(userID, deviceID uuid.UUID, nonce []byte) []byte {
	u, d := userID.String(), deviceID.String()
	msg := make([]byte, 0, len(u)+len(d)+len(nonce))
	msg = append(msg, u...)
	msg = append(msg, d...)
	return append(msg, nonce...)
}

func trustLevelFor(score int) int {
	if score >= TrustThreshold {
		return 1
	}
	return 0
}

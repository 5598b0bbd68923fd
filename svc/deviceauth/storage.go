package deviceauth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Stores return the package's NotFound errors (ErrUserNotFound,
// ErrDeviceNotFound, ...) for missing rows so Service can pass them through.

type UserStorage interface {
	UserExists(ctx context.Context, userID uuid.UUID) (bool, error)
}

type DeviceStorage interface {
	CreateDevice(ctx context.Context, device Device) error
	GetDevice(ctx context.Context, deviceID uuid.UUID) (Device, error)
	ListUserDevices(ctx context.Context, userID uuid.UUID) ([]Device, error)
	TouchDevice(ctx context.Context, deviceID uuid.UUID, at time.Time) error
}

type ChallengeStorage interface {
	CreateChallenge(ctx context.Context, challenge Challenge) error
	GetChallenge(ctx context.Context, challengeID uuid.UUID) (Challenge, error)
	// ConsumeChallenge atomically marks the challenge used if it is unused
	// and at is before its expiry. Otherwise it returns ErrChallengeGone,
	// or ErrChallengeNotFound when the challenge does not exist. Of any
	// number of concurrent calls for one challenge at most one succeeds.
	ConsumeChallenge(ctx context.Context, challengeID uuid.UUID, at time.Time) error
}

type SecretStorage interface {
	// SaveTOTPSecret stores the user's secret, replacing any previous one.
	SaveTOTPSecret(ctx context.Context, secret TOTPSecret) error
	GetTOTPSecret(ctx context.Context, userID uuid.UUID) (TOTPSecret, error)

	// SaveRecoveryCodes replaces the user's recovery code hashes.
	SaveRecoveryCodes(ctx context.Context, userID uuid.UUID, hashes []string) error
	ListRecoveryCodes(ctx context.Context, userID uuid.UUID) ([]string, error)
	// ConsumeRecoveryCode deletes one hash. It returns ErrRecoveryCodeNotFound
	// when the hash is not stored, so of concurrent calls at most one succeeds.
	ConsumeRecoveryCode(ctx context.Context, userID uuid.UUID, hash string) error
}

// Storage is everything Service persists.
type Storage interface {
	UserStorage
	DeviceStorage
	ChallengeStorage
	SecretStorage
}

package deviceauth

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage keeps all state in process. Intended for development and tests.
type MemoryStorage struct {
	mu         sync.RWMutex
	users      map[uuid.UUID]struct{}
	devices    map[uuid.UUID]Device
	challenges map[uuid.UUID]Challenge
	secrets    map[uuid.UUID]TOTPSecret // by user ID
	recovery   map[uuid.UUID][]string   // hashes by user ID
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		users:      make(map[uuid.UUID]struct{}),
		devices:    make(map[uuid.UUID]Device),
		challenges: make(map[uuid.UUID]Challenge),
		secrets:    make(map[uuid.UUID]TOTPSecret),
		recovery:   make(map[uuid.UUID][]string),
	}
}

// AddUser registers a user ID. Users are owned by another system, so this is
// the only way to make them known to the memory store.
func (m *MemoryStorage) AddUser(userID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[userID] = struct{}{}
}

// EnsureUser is AddUser with the signature shared by the PostgreSQL store.
func (m *MemoryStorage) EnsureUser(_ context.Context, userID uuid.UUID) error {
	m.AddUser(userID)
	return nil
}

func (m *MemoryStorage) UserExists(_ context.Context, userID uuid.UUID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.users[userID]
	return ok, nil
}

func (m *MemoryStorage) CreateDevice(_ context.Context, device Device) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[device.UserID]; !ok {
		return ErrUserNotFound
	}
	device.PublicKey = slices.Clone(device.PublicKey)
	m.devices[device.ID] = device
	return nil
}

func (m *MemoryStorage) GetDevice(_ context.Context, deviceID uuid.UUID) (Device, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.devices[deviceID]
	if !ok {
		return Device{}, ErrDeviceNotFound
	}
	d.PublicKey = slices.Clone(d.PublicKey)
	return d, nil
}

func (m *MemoryStorage) ListUserDevices(_ context.Context, userID uuid.UUID) ([]Device, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Device
	for _, d := range m.devices {
		if d.UserID == userID {
			d.PublicKey = slices.Clone(d.PublicKey)
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *MemoryStorage) TouchDevice(_ context.Context, deviceID uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.devices[deviceID]
	if !ok {
		return ErrDeviceNotFound
	}
	d.LastSeenAt = at
	m.devices[deviceID] = d
	return nil
}

func (m *MemoryStorage) CreateChallenge(_ context.Context, challenge Challenge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	challenge.Nonce = slices.Clone(challenge.Nonce)
	m.challenges[challenge.ID] = challenge
	return nil
}

func (m *MemoryStorage) GetChallenge(_ context.Context, challengeID uuid.UUID) (Challenge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.challenges[challengeID]
	if !ok {
		return Challenge{}, ErrChallengeNotFound
	}
	c.Nonce = slices.Clone(c.Nonce)
	return c, nil
}

func (m *MemoryStorage) ConsumeChallenge(_ context.Context, challengeID uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.challenges[challengeID]
	if !ok {
		return ErrChallengeNotFound
	}
	if !c.ApprovableAt(at) {
		return ErrChallengeGone
	}
	c.Used = true
	m.challenges[challengeID] = c
	return nil
}

// DeleteExpiredChallenges removes challenges that expired before cutoff.
func (m *MemoryStorage) DeleteExpiredChallenges(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, c := range m.challenges {
		if c.ExpiresAt.Before(cutoff) {
			delete(m.challenges, id)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStorage) SaveTOTPSecret(_ context.Context, secret TOTPSecret) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[secret.UserID]; !ok {
		return ErrUserNotFound
	}
	secret.Sealed = slices.Clone(secret.Sealed)
	m.secrets[secret.UserID] = secret
	return nil
}

func (m *MemoryStorage) GetTOTPSecret(_ context.Context, userID uuid.UUID) (TOTPSecret, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.secrets[userID]
	if !ok {
		return TOTPSecret{}, ErrSecretNotFound
	}
	s.Sealed = slices.Clone(s.Sealed)
	return s, nil
}

func (m *MemoryStorage) SaveRecoveryCodes(_ context.Context, userID uuid.UUID, hashes []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return ErrUserNotFound
	}
	m.recovery[userID] = slices.Clone(hashes)
	return nil
}

func (m *MemoryStorage) ListRecoveryCodes(_ context.Context, userID uuid.UUID) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.recovery[userID]), nil
}

func (m *MemoryStorage) ConsumeRecoveryCode(_ context.Context, userID uuid.UUID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	hashes := m.recovery[userID]
	i := slices.Index(hashes, hash)
	if i < 0 {
		return ErrRecoveryCodeNotFound
	}
	m.recovery[userID] = slices.Delete(hashes, i, i+1)
	return nil
}

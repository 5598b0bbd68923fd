package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/devicekey/svc/deviceauth"
)

const (
	DefaultKeyPrefix = "devicekey:challenge:"
	// DefaultRetention keeps expired challenges readable so late approvals
	// see ErrChallengeGone instead of ErrChallengeNotFound.
	DefaultRetention = 10 * time.Minute
)

// consumeScript marks a challenge used when it is unused and not expired.
// Returns 1 on success, 0 when gone, -1 when missing.
var consumeScript = redis.NewScript(`
local exp = redis.call('HGET', KEYS[1], 'expires_at')
if not exp then
	return -1
end
if redis.call('HGET', KEYS[1], 'used') == '1' then
	return 0
end
if tonumber(ARGV[1]) >= tonumber(exp) then
	return 0
end
redis.call('HSET', KEYS[1], 'used', '1')
return 1
`)

// ChallengeStorage keeps challenges in Redis hashes. It implements
// deviceauth.ChallengeStorage and is used through deviceauth.WithChallengeStorage.
type ChallengeStorage struct {
	client    redis.UniversalClient
	prefix    string
	retention time.Duration
}

var _ deviceauth.ChallengeStorage = (*ChallengeStorage)(nil)

type Option func(*ChallengeStorage)

func WithKeyPrefix(prefix string) Option {
	return func(s *ChallengeStorage) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

func WithRetention(d time.Duration) Option {
	return func(s *ChallengeStorage) {
		if d >= 0 {
			s.retention = d
		}
	}
}

func New(client redis.UniversalClient, opts ...Option) *ChallengeStorage {
	s := &ChallengeStorage{
		client:    client,
		prefix:    DefaultKeyPrefix,
		retention: DefaultRetention,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ChallengeStorage) key(id uuid.UUID) string {
	return s.prefix + id.String()
}

func (s *ChallengeStorage) CreateChallenge(ctx context.Context, c deviceauth.Challenge) error {
	key := s.key(c.ID)
	used := "0"
	if c.Used {
		used = "1"
	}

	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key,
			"user_id", c.UserID.String(),
			"device_id", c.DeviceID.String(),
			"nonce", c.Nonce,
			"created_at", c.CreatedAt.UnixMicro(),
			"expires_at", c.ExpiresAt.UnixMicro(),
			"used", used,
		)
		p.PExpireAt(ctx, key, c.ExpiresAt.Add(s.retention))
		return nil
	})
	if err != nil {
		return fmt.Errorf("store challenge: %w", err)
	}
	return nil
}

func (s *ChallengeStorage) GetChallenge(ctx context.Context, challengeID uuid.UUID) (deviceauth.Challenge, error) {
	fields, err := s.client.HGetAll(ctx, s.key(challengeID)).Result()
	if err != nil {
		return deviceauth.Challenge{}, fmt.Errorf("load challenge: %w", err)
	}
	if len(fields) == 0 {
		return deviceauth.Challenge{}, deviceauth.ErrChallengeNotFound
	}

	c, err := decode(challengeID, fields)
	if err != nil {
		return deviceauth.Challenge{}, errors.Join(deviceauth.ErrInternal, err)
	}
	return c, nil
}

func (s *ChallengeStorage) ConsumeChallenge(ctx context.Context, challengeID uuid.UUID, at time.Time) error {
	res, err := consumeScript.Run(ctx, s.client, []string{s.key(challengeID)}, at.UnixMicro()).Int()
	if err != nil {
		return fmt.Errorf("consume challenge: %w", err)
	}
	switch res {
	case 1:
		return nil
	case -1:
		return deviceauth.ErrChallengeNotFound
	default:
		return deviceauth.ErrChallengeGone
	}
}

func decode(id uuid.UUID, f map[string]string) (deviceauth.Challenge, error) {
	userID, err := uuid.Parse(f["user_id"])
	if err != nil {
		return deviceauth.Challenge{}, fmt.Errorf("challenge %s: user_id: %w", id, err)
	}
	deviceID, err := uuid.Parse(f["device_id"])
	if err != nil {
		return deviceauth.Challenge{}, fmt.Errorf("challenge %s: device_id: %w", id, err)
	}
	created, err := strconv.ParseInt(f["created_at"], 10, 64)
	if err != nil {
		return deviceauth.Challenge{}, fmt.Errorf("challenge %s: created_at: %w", id, err)
	}
	expires, err := strconv.ParseInt(f["expires_at"], 10, 64)
	if err != nil {
		return deviceauth.Challenge{}, fmt.Errorf("challenge %s: expires_at: %w", id, err)
	}

	return deviceauth.Challenge{
		ID:        id,
		UserID:    userID,
		DeviceID:  deviceID,
		Nonce:     []byte(f["nonce"]),
		CreatedAt: time.UnixMicro(created).UTC(),
		ExpiresAt: time.UnixMicro(expires).UTC(),
		Used:      f["used"] == "1",
	}, nil
}

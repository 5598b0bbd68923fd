package redisstore_test

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/devicekey/pkg/redis"
	"github.com/dmitrymomot/devicekey/svc/deviceauth"
	"github.com/dmitrymomot/devicekey/svc/deviceauth/redisstore"
)

func newClient(t *testing.T) *goredis.Client {
	t.Helper()

	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	client, err := redis.Connect(context.Background(), redis.Config{ConnectionURL: url, ConnectTimeout: 5 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func newChallenge(now time.Time) deviceauth.Challenge {
	return deviceauth.Challenge{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		DeviceID:  uuid.New(),
		Nonce:     []byte{0x00, 0xff, 0x01, 0xfe, 0x02, 0xfd, 0x03, 0xfc, 0x04, 0xfb, 0x05, 0xfa, 0x06, 0xf9, 0x07, 0xf8},
		CreatedAt: now,
		ExpiresAt: now.Add(deviceauth.DefaultChallengeTTL),
	}
}

func TestChallengeStorage(t *testing.T) {
	client := newClient(t)
	prefix := "devicekey:test:" + uuid.NewString() + ":"
	store := redisstore.New(client, redisstore.WithKeyPrefix(prefix))
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	ch := newChallenge(now)
	require.NoError(t, store.CreateChallenge(ctx, ch))

	got, err := store.GetChallenge(ctx, ch.ID)
	require.NoError(t, err)
	assert.Equal(t, ch.UserID, got.UserID)
	assert.Equal(t, ch.DeviceID, got.DeviceID)
	assert.Equal(t, ch.Nonce, got.Nonce)
	assert.True(t, ch.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, ch.ExpiresAt.Equal(got.ExpiresAt))
	assert.False(t, got.Used)

	_, err = store.GetChallenge(ctx, uuid.New())
	assert.ErrorIs(t, err, deviceauth.ErrChallengeNotFound)
	assert.ErrorIs(t, store.ConsumeChallenge(ctx, uuid.New(), now), deviceauth.ErrChallengeNotFound)
	assert.ErrorIs(t, store.ConsumeChallenge(ctx, ch.ID, ch.ExpiresAt), deviceauth.ErrChallengeGone)

	require.NoError(t, store.ConsumeChallenge(ctx, ch.ID, now))
	assert.ErrorIs(t, store.ConsumeChallenge(ctx, ch.ID, now), deviceauth.ErrChallengeGone)

	got, err = store.GetChallenge(ctx, ch.ID)
	require.NoError(t, err)
	assert.True(t, got.Used)

	ttl, err := client.PTTL(ctx, prefix+ch.ID.String()).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, deviceauth.DefaultChallengeTTL)
	assert.LessOrEqual(t, ttl, deviceauth.DefaultChallengeTTL+redisstore.DefaultRetention)
}

func TestChallengeStorage_ConcurrentConsume(t *testing.T) {
	client := newClient(t)
	store := redisstore.New(client, redisstore.WithKeyPrefix("devicekey:test:"+uuid.NewString()+":"))
	ctx := context.Background()
	now := time.Now()

	ch := newChallenge(now)
	require.NoError(t, store.CreateChallenge(ctx, ch))

	const racers = 24
	results := make([]error, racers)
	var wg sync.WaitGroup
	for i := range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = store.ConsumeChallenge(ctx, ch.ID, now)
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, deviceauth.ErrChallengeGone)
	}
	assert.Equal(t, 1, succeeded)
}

func TestChallengeStorage_WithService(t *testing.T) {
	client := newClient(t)
	challenges := redisstore.New(client, redisstore.WithKeyPrefix("devicekey:test:"+uuid.NewString()+":"))
	ctx := context.Background()

	storage := deviceauth.NewMemoryStorage()
	userID := uuid.New()
	storage.AddUser(userID)

	svc, err := deviceauth.NewService(storage, make([]byte, 32), deviceauth.WithChallengeStorage(challenges))
	require.NoError(t, err)

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)

	device, err := svc.RegisterDevice(ctx, deviceauth.RegisterDeviceParams{
		UserID:           userID,
		PublicKey:        der,
		AttestationToken: strings.Repeat("a", 40),
	})
	require.NoError(t, err)

	ch, err := svc.BeginAuth(ctx, userID)
	require.NoError(t, err)

	stored, err := challenges.GetChallenge(ctx, ch.ID)
	require.NoError(t, err)
	assert.Equal(t, ch.Nonce, stored.Nonce)

	digest := sha256.Sum256(deviceauth.SignedMessage(userID, device.ID, ch.Nonce))
	sig, err := ecdsa.SignASN1(rand.Reader, priv, digest[:])
	require.NoError(t, err)

	require.NoError(t, svc.Approve(ctx, ch.ID, device.ID, sig))
	assert.ErrorIs(t, svc.Approve(ctx, ch.ID, device.ID, sig), deviceauth.ErrGone)
}

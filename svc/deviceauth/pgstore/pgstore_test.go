package pgstore_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/devicekey/pkg/audit"
	"github.com/dmitrymomot/devicekey/pkg/logger"
	"github.com/dmitrymomot/devicekey/pkg/pg"
	"github.com/dmitrymomot/devicekey/pkg/totp"
	"github.com/dmitrymomot/devicekey/svc/deviceauth"
	"github.com/dmitrymomot/devicekey/svc/deviceauth/pgstore"
)

// newPool connects to TEST_PG_CONN_URL and applies migrations. Tests are
// skipped when the variable is not set.
func newPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	connURL := os.Getenv("TEST_PG_CONN_URL")
	if connURL == "" {
		t.Skip("TEST_PG_CONN_URL not set")
	}

	ctx := context.Background()
	cfg := pg.Config{
		ConnectionString: connURL,
		MaxOpenConns:     10,
		RetryAttempts:    1,
		RetryInterval:    100 * time.Millisecond,
		MigrationsTable:  "devicekey_test_migrations",
	}
	pool, err := pg.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pg.Migrate(ctx, pool, pgstore.Migrations, pgstore.MigrationsDir, cfg, logger.Discard()))
	return pool
}

func newStorage(t *testing.T) *pgstore.Storage {
	t.Helper()
	return pgstore.New(newPool(t))
}

func newUser(t *testing.T, s *pgstore.Storage) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, s.EnsureUser(context.Background(), id))
	require.NoError(t, s.EnsureUser(context.Background(), id))
	return id
}

func newDevice(t *testing.T, s *pgstore.Storage, userID uuid.UUID, seen time.Time) deviceauth.Device {
	t.Helper()
	d := deviceauth.Device{
		ID:               uuid.New(),
		UserID:           userID,
		PublicKey:        []byte{0x30, 0x59, 0x01},
		PushToken:        "push",
		ModelHash:        "model",
		OSHash:           "os",
		TrustLevel:       1,
		AttestationScore: 80,
		LastSeenAt:       seen,
		CreatedAt:        seen,
	}
	require.NoError(t, s.CreateDevice(context.Background(), d))
	return d
}

func TestStorage_Users(t *testing.T) {
	s := newStorage(t)
	ctx := context.Background()

	userID := newUser(t, s)
	ok, err := s.UserExists(ctx, userID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.UserExists(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStorage_Devices(t *testing.T) {
	s := newStorage(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	userID := newUser(t, s)

	d := newDevice(t, s, userID, now)

	got, err := s.GetDevice(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.PublicKey, got.PublicKey)
	assert.Equal(t, d.TrustLevel, got.TrustLevel)
	assert.Equal(t, d.AttestationScore, got.AttestationScore)
	assert.True(t, d.LastSeenAt.Equal(got.LastSeenAt))

	_, err = s.GetDevice(ctx, uuid.New())
	assert.ErrorIs(t, err, deviceauth.ErrDeviceNotFound)

	err = s.CreateDevice(ctx, deviceauth.Device{ID: uuid.New(), UserID: uuid.New(), PublicKey: []byte{1}, LastSeenAt: now, CreatedAt: now})
	assert.ErrorIs(t, err, deviceauth.ErrUserNotFound)

	later := now.Add(time.Hour)
	require.NoError(t, s.TouchDevice(ctx, d.ID, later))
	devices, err := s.ListUserDevices(ctx, userID)
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.True(t, later.Equal(devices[0].LastSeenAt))

	assert.ErrorIs(t, s.TouchDevice(ctx, uuid.New(), later), deviceauth.ErrDeviceNotFound)
}

func TestStorage_Challenges(t *testing.T) {
	s := newStorage(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	userID := newUser(t, s)
	d := newDevice(t, s, userID, now)

	ch := deviceauth.Challenge{
		ID:        uuid.New(),
		UserID:    userID,
		DeviceID:  d.ID,
		Nonce:     []byte("0123456789abcdef"),
		CreatedAt: now,
		ExpiresAt: now.Add(time.Minute),
	}
	require.NoError(t, s.CreateChallenge(ctx, ch))

	got, err := s.GetChallenge(ctx, ch.ID)
	require.NoError(t, err)
	assert.Equal(t, ch.Nonce, got.Nonce)
	assert.False(t, got.Used)

	_, err = s.GetChallenge(ctx, uuid.New())
	assert.ErrorIs(t, err, deviceauth.ErrChallengeNotFound)
	assert.ErrorIs(t, s.ConsumeChallenge(ctx, uuid.New(), now), deviceauth.ErrChallengeNotFound)
	assert.ErrorIs(t, s.ConsumeChallenge(ctx, ch.ID, ch.ExpiresAt), deviceauth.ErrChallengeGone)

	const racers = 16
	results := make([]error, racers)
	var wg sync.WaitGroup
	for i := range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = s.ConsumeChallenge(ctx, ch.ID, now)
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

	removed, err := s.DeleteExpiredChallenges(ctx, ch.ExpiresAt.Add(time.Second))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, removed, int64(1))
}

func TestStorage_TOTPSecrets(t *testing.T) {
	s := newStorage(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	userID := newUser(t, s)

	_, err := s.GetTOTPSecret(ctx, userID)
	assert.ErrorIs(t, err, deviceauth.ErrSecretNotFound)

	first := deviceauth.TOTPSecret{ID: uuid.New(), UserID: userID, Sealed: []byte("first"), Algorithm: totp.SHA1, Digits: 6, Period: 30, CreatedAt: now}
	require.NoError(t, s.SaveTOTPSecret(ctx, first))

	second := deviceauth.TOTPSecret{ID: uuid.New(), UserID: userID, Sealed: []byte("second"), Algorithm: totp.SHA512, Digits: 8, Period: 60, CreatedAt: now}
	require.NoError(t, s.SaveTOTPSecret(ctx, second))

	got, err := s.GetTOTPSecret(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
	assert.Equal(t, []byte("second"), got.Sealed)
	assert.Equal(t, totp.SHA512, got.Algorithm)
	assert.Equal(t, 8, got.Digits)
	assert.Equal(t, 60, got.Period)

	err = s.SaveTOTPSecret(ctx, deviceauth.TOTPSecret{ID: uuid.New(), UserID: uuid.New(), Sealed: []byte("x"), Algorithm: totp.SHA1, Digits: 6, Period: 30, CreatedAt: now})
	assert.ErrorIs(t, err, deviceauth.ErrUserNotFound)
}

func TestStorage_RecoveryCodes(t *testing.T) {
	s := newStorage(t)
	ctx := context.Background()
	userID := newUser(t, s)

	hashes, err := s.ListRecoveryCodes(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, hashes)

	require.NoError(t, s.SaveRecoveryCodes(ctx, userID, []string{"b", "a", "c"}))
	hashes, err = s.ListRecoveryCodes(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, hashes)

	require.NoError(t, s.ConsumeRecoveryCode(ctx, userID, "b"))
	assert.ErrorIs(t, s.ConsumeRecoveryCode(ctx, userID, "b"), deviceauth.ErrRecoveryCodeNotFound)
	assert.ErrorIs(t, s.ConsumeRecoveryCode(ctx, uuid.New(), "a"), deviceauth.ErrRecoveryCodeNotFound)

	require.NoError(t, s.SaveRecoveryCodes(ctx, userID, []string{"d"}))
	hashes, err = s.ListRecoveryCodes(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"d"}, hashes, "saving replaces the previous set")

	assert.ErrorIs(t, s.SaveRecoveryCodes(ctx, uuid.New(), []string{"x"}), deviceauth.ErrUserNotFound)
}

func TestAuditStorage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := pgstore.NewAuditStorage(newPool(t))
	userID := uuid.NewString()
	base := time.Now().UTC().Truncate(time.Millisecond)

	single := audit.Event{
		ID:        uuid.NewString(),
		UserID:    userID,
		Action:    "device.registered",
		Result:    audit.ResultSuccess,
		Metadata:  map[string]any{"trust_level": 1},
		CreatedAt: base,
	}
	require.NoError(t, s.Store(ctx, single))

	batch := []audit.Event{
		{ID: uuid.NewString(), UserID: userID, Action: "totp.rejected", Result: audit.ResultFailure, Error: "invalid code", CreatedAt: base.Add(time.Second)},
		{ID: uuid.NewString(), UserID: userID, Action: "totp.verified", Result: audit.ResultSuccess, CreatedAt: base.Add(2 * time.Second)},
	}
	require.NoError(t, s.StoreBatch(ctx, batch))
	require.NoError(t, s.StoreBatch(ctx, nil))

	events, err := s.ListUserEvents(ctx, userID, 10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "totp.verified", events[0].Action)
	assert.Equal(t, "invalid code", events[1].Error)
	assert.Equal(t, audit.ResultFailure, events[1].Result)
	assert.Equal(t, single.ID, events[2].ID)
	assert.EqualValues(t, 1, events[2].Metadata["trust_level"])

	assert.ErrorIs(t, s.Store(ctx, audit.Event{ID: "not-a-uuid", Action: "x"}), audit.ErrEventValidation)
}

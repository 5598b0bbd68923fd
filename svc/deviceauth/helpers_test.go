package deviceauth_test

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/devicekey/pkg/push"
	"github.com/dmitrymomot/devicekey/pkg/secrets"
	"github.com/dmitrymomot/devicekey/svc/deviceauth"
)

var trustedToken = strings.Repeat("a", 40)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type mockPusher struct {
	mock.Mock
}

func (m *mockPusher) Push(ctx context.Context, msg push.Message) error {
	return m.Called(ctx, msg).Error(0)
}

type fixture struct {
	svc    *deviceauth.Service
	store  *deviceauth.MemoryStorage
	clock  *clock
	key    []byte
	userID uuid.UUID
}

func newFixture(t *testing.T, opts ...deviceauth.Option) *fixture {
	t.Helper()

	key, err := secrets.GenerateKey()
	require.NoError(t, err)

	f := &fixture{
		store:  deviceauth.NewMemoryStorage(),
		clock:  newClock(),
		key:    key,
		userID: uuid.New(),
	}
	f.store.AddUser(f.userID)

	opts = append([]deviceauth.Option{deviceauth.WithClock(f.clock.Now)}, opts...)
	f.svc, err = deviceauth.NewService(f.store, key, opts...)
	require.NoError(t, err)
	return f
}

func newDeviceKey(t *testing.T) (*ecdsa.PrivateKey, []byte) {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)
	return priv, der
}

func sign(t *testing.T, priv *ecdsa.PrivateKey, msg []byte) []byte {
	t.Helper()
	digest := sha256.Sum256(msg)
	sig, err := ecdsa.SignASN1(rand.Reader, priv, digest[:])
	require.NoError(t, err)
	return sig
}

func (f *fixture) registerDevice(t *testing.T, userID uuid.UUID, attestation, pushToken string) (deviceauth.Device, *ecdsa.PrivateKey) {
	t.Helper()
	priv, der := newDeviceKey(t)
	device, err := f.svc.RegisterDevice(context.Background(), deviceauth.RegisterDeviceParams{
		UserID:           userID,
		PublicKey:        der,
		PushToken:        pushToken,
		ModelHash:        "model-hash",
		OSHash:           "os-hash",
		AttestationToken: attestation,
	})
	require.NoError(t, err)
	return device, priv
}

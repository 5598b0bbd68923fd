package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/devicekey/pkg/config"
)

type sampleConfig struct {
	Name    string        `env:"CFG_TEST_NAME" envDefault:"devicekey"`
	Timeout time.Duration `env:"CFG_TEST_TIMEOUT" envDefault:"5s"`
	Drivers []string      `env:"CFG_TEST_DRIVERS" envSeparator:","`
}

type requiredConfig struct {
	Key string `env:"CFG_TEST_REQUIRED,required"`
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var cfg sampleConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "devicekey", cfg.Name)
		assert.Equal(t, 5*time.Second, cfg.Timeout)
		assert.Empty(t, cfg.Drivers)
	})

	t.Run("environment values", func(t *testing.T) {
		t.Setenv("CFG_TEST_NAME", "svc")
		t.Setenv("CFG_TEST_TIMEOUT", "250ms")
		t.Setenv("CFG_TEST_DRIVERS", "memory,postgres")

		var cfg sampleConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "svc", cfg.Name)
		assert.Equal(t, 250*time.Millisecond, cfg.Timeout)
		assert.Equal(t, []string{"memory", "postgres"}, cfg.Drivers)
	})

	t.Run("missing required", func(t *testing.T) {
		var cfg requiredConfig
		assert.ErrorIs(t, config.Load(&cfg), config.ErrParsingConfig)
		assert.Panics(t, func() { config.MustLoad(&cfg) })
	})

	t.Run("nil pointer", func(t *testing.T) {
		assert.ErrorIs(t, config.Load[sampleConfig](nil), config.ErrNilPointer)
	})
}

func TestLoadPrefixed(t *testing.T) {
	t.Setenv("SECONDARY_CFG_TEST_NAME", "secondary")

	var cfg sampleConfig
	require.NoError(t, config.LoadPrefixed(&cfg, "SECONDARY_"))
	assert.Equal(t, "secondary", cfg.Name)
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env.test")
	require.NoError(t, os.WriteFile(path, []byte("CFG_TEST_REQUIRED=from-file\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("CFG_TEST_REQUIRED") })

	require.NoError(t, config.LoadEnv(path))

	var cfg requiredConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "from-file", cfg.Key)

	assert.ErrorIs(t, config.LoadEnv(filepath.Join(dir, "missing.env")), config.ErrLoadingEnv)
}

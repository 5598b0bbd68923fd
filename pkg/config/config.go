package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	ErrParsingConfig = errors.New("failed to parse environment variables into config")
	ErrNilPointer    = errors.New("nil pointer provided to config loader")
	ErrLoadingEnv    = errors.New("failed to load env file")
)

var dotenvOnce sync.Once

// Load parses environment variables into v using `env` struct tags.
// The first call loads ./.env when present; variables already set in the
// process environment take precedence over the file.
//
//	type PushConfig struct {
//		GatewayURL string        `env:"PUSH_GATEWAY_URL"`
//		Timeout    time.Duration `env:"PUSH_TIMEOUT" envDefault:"5s"`
//	}
//
//	var cfg PushConfig
//	if err := config.Load(&cfg); err != nil { ... }
func Load[T any](v *T) error {
	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})
	return parse(v, env.Options{})
}

// LoadPrefixed is Load with every variable name prefixed, so one struct type
// can be loaded for several instances (e.g. two Redis clients).
func LoadPrefixed[T any](v *T, prefix string) error {
	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})
	return parse(v, env.Options{Prefix: prefix})
}

// MustLoad is Load that panics on failure. Use it for settings the process
// cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

// LoadEnv loads the given env files into the process environment without
// overriding variables that are already set. Files are applied in order, so
// an earlier file wins over a later one.
func LoadEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil {
		return errors.Join(ErrLoadingEnv, err)
	}
	return nil
}

func parse[T any](v *T, opts env.Options) error {
	if v == nil {
		return ErrNilPointer
	}
	if err := env.ParseWithOptions(v, opts); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

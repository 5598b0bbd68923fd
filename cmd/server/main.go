// Command server runs the devicekey HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/devicekey/modules/deviceauth"
	"github.com/dmitrymomot/devicekey/pkg/audit"
	"github.com/dmitrymomot/devicekey/pkg/clientip"
	"github.com/dmitrymomot/devicekey/pkg/config"
	"github.com/dmitrymomot/devicekey/pkg/httpserver"
	"github.com/dmitrymomot/devicekey/pkg/logger"
	"github.com/dmitrymomot/devicekey/pkg/pg"
	"github.com/dmitrymomot/devicekey/pkg/push"
	"github.com/dmitrymomot/devicekey/pkg/ratelimiter"
	"github.com/dmitrymomot/devicekey/pkg/redis"
	"github.com/dmitrymomot/devicekey/pkg/requestid"
	"github.com/dmitrymomot/devicekey/pkg/totp"
	authsvc "github.com/dmitrymomot/devicekey/svc/deviceauth"
	"github.com/dmitrymomot/devicekey/svc/deviceauth/pgstore"
	"github.com/dmitrymomot/devicekey/svc/deviceauth/redisstore"
)

const (
	driverMemory   = "memory"
	driverPostgres = "postgres"
	driverRedis    = "redis"
	driverStorage  = "storage"
)

type appConfig struct {
	StorageDriver      string        `env:"STORAGE_DRIVER" envDefault:"memory"`   // memory | postgres
	ChallengeStore     string        `env:"CHALLENGE_STORE" envDefault:"storage"` // storage | redis
	RateLimitStore     string        `env:"RATE_LIMIT_STORE" envDefault:"memory"` // memory | redis
	ChallengeTTL       time.Duration `env:"CHALLENGE_TTL" envDefault:"60s"`
	Issuer             string        `env:"TOTP_ISSUER" envDefault:"devicekey"`  // default issuer for enrollment URIs
	RecoveryCodes      int           `env:"TOTP_RECOVERY_CODES" envDefault:"10"` // codes issued per enrollment
	TrustProxyHeaders  bool          `env:"HTTP_TRUST_PROXY_HEADERS"`            // only behind a trusted proxy
	JanitorInterval    time.Duration `env:"CHALLENGE_JANITOR_INTERVAL" envDefault:"5m"`
	ChallengeRetention time.Duration `env:"CHALLENGE_RETENTION" envDefault:"24h"` // how long expired rows are kept
	AuditBufferSize    int           `env:"AUDIT_BUFFER_SIZE" envDefault:"1000"`
	AuditMemoryLimit   int           `env:"AUDIT_MEMORY_LIMIT" envDefault:"10000"` // memory driver only
}

// Default buckets, each overridable through RATE_LIMIT_<SCOPE>_CAPACITY,
// _REFILL_RATE and _REFILL_INTERVAL.
var rateLimits = []struct {
	prefix string
	def    ratelimiter.Config
}{
	{"RATE_LIMIT_IP_", ratelimiter.Config{Capacity: 120, RefillRate: 2, RefillInterval: time.Second}},
	{"RATE_LIMIT_TOTP_", ratelimiter.Config{Capacity: 5, RefillRate: 1, RefillInterval: time.Minute}},
	{"RATE_LIMIT_BEGIN_", ratelimiter.Config{Capacity: 10, RefillRate: 1, RefillInterval: 30 * time.Second}},
	{"RATE_LIMIT_APPROVE_", ratelimiter.Config{Capacity: 10, RefillRate: 1, RefillInterval: 10 * time.Second}},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("server exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var (
		logCfg   logger.Config
		app      appConfig
		httpCfg  httpserver.Config
		pushCfg  push.Config
		totpCfg  totp.Config
		pgCfg    pg.Config
		redisCfg redis.Config
	)
	for _, load := range []func() error{
		func() error { return config.Load(&logCfg) },
		func() error { return config.Load(&app) },
		func() error { return config.Load(&httpCfg) },
		func() error { return config.Load(&pushCfg) },
		func() error { return config.Load(&totpCfg) },
	} {
		if err := load(); err != nil {
			return err
		}
	}

	log, err := logger.NewFromConfig(logCfg, logger.WithContextExtractors(
		requestid.LoggerExtractor(),
		clientip.LoggerExtractor(),
	))
	if err != nil {
		return err
	}
	logger.SetAsDefault(log)

	sealingKey, err := totp.LoadEncryptionKey(totpCfg)
	if err != nil {
		return err
	}

	var checks []httpserver.Check

	backend, err := openBackend(ctx, app, &pgCfg, log, &checks)
	if err != nil {
		return err
	}
	defer backend.close()

	auditLog := audit.NewLogger(backend.audit,
		audit.WithRequestIDExtractor(requestid.FromContext),
		audit.WithIPExtractor(clientip.FromContext),
		audit.WithAsync(audit.AsyncOptions{
			BufferSize: app.AuditBufferSize,
			OnError: func(err error, dropped int) {
				log.Error("failed to write audit events", logger.Error(err), slog.Int("dropped", dropped))
			},
		}),
	)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
		defer cancel()
		if err := auditLog.Close(closeCtx); err != nil {
			log.Error("audit queue not drained", logger.Error(err))
		}
	}()

	var rdb *goredis.Client
	if app.ChallengeStore == driverRedis || app.RateLimitStore == driverRedis {
		if err := config.Load(&redisCfg); err != nil {
			return err
		}
		rdb, err = redis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer rdb.Close()
		checks = append(checks, httpserver.Check{Name: "redis", Probe: redis.Healthcheck(rdb)})
	}

	pusher, err := push.NewFromConfig(pushCfg)
	if err != nil {
		return err
	}

	svcOpts := []authsvc.Option{
		authsvc.WithLogger(log),
		authsvc.WithPusher(pusher),
		authsvc.WithAuditor(auditLog),
		authsvc.WithChallengeTTL(app.ChallengeTTL),
		authsvc.WithIssuer(app.Issuer),
		authsvc.WithRecoveryCodeCount(app.RecoveryCodes),
	}
	switch app.ChallengeStore {
	case driverStorage:
	case driverRedis:
		svcOpts = append(svcOpts, authsvc.WithChallengeStorage(redisstore.New(rdb)))
	default:
		return fmt.Errorf("unknown CHALLENGE_STORE %q", app.ChallengeStore)
	}

	svc, err := authsvc.NewService(backend.storage, sealingKey, svcOpts...)
	if err != nil {
		return err
	}

	store, closeStore, err := rateLimitStore(app.RateLimitStore, rdb)
	if err != nil {
		return err
	}
	defer closeStore()

	limiters := make([]ratelimiter.RateLimiter, len(rateLimits))
	for i, rl := range rateLimits {
		cfg, err := ratelimiter.ConfigFromEnv(rl.prefix, rl.def)
		if err != nil {
			return err
		}
		if limiters[i], err = ratelimiter.NewBucket(store, cfg); err != nil {
			return err
		}
	}
	ipLimiter, verifyLimiter, beginLimiter, approveLimiter := limiters[0], limiters[1], limiters[2], limiters[3]

	var users deviceauth.UserRegistry
	if reg, ok := backend.storage.(deviceauth.UserRegistry); ok {
		users = reg
	}

	api := deviceauth.NewAPI(svc, users,
		deviceauth.WithLogger(log),
		deviceauth.WithVerifyLimiter(verifyLimiter),
		deviceauth.WithBeginLimiter(beginLimiter),
		deviceauth.WithApproveLimiter(approveLimiter),
		deviceauth.WithAuditReader(backend.audit),
	)

	router := deviceauth.Router(deviceauth.RouterOptions{
		API:               api,
		Logger:            log,
		Checks:            checks,
		IPLimiter:         ipLimiter,
		TrustProxyHeaders: app.TrustProxyHeaders,
	})

	if app.JanitorInterval > 0 {
		go runJanitor(ctx, backend.janitor, app.JanitorInterval, app.ChallengeRetention, log)
	}

	return httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log)).Run(ctx, router)
}

type challengeJanitor interface {
	DeleteExpiredChallenges(ctx context.Context, cutoff time.Time) (int64, error)
}

type auditStore interface {
	audit.Storage
	audit.Reader
}

// backend bundles the persistence chosen by STORAGE_DRIVER.
type backend struct {
	storage authsvc.Storage
	audit   auditStore
	janitor challengeJanitor
	close   func()
}

func openBackend(ctx context.Context, app appConfig, pgCfg *pg.Config, log *slog.Logger, checks *[]httpserver.Check) (backend, error) {
	switch app.StorageDriver {
	case driverMemory:
		log.Warn("using in-memory storage; state is lost on restart")
		store := authsvc.NewMemoryStorage()
		return backend{
			storage: store,
			audit:   audit.NewMemoryStorage(app.AuditMemoryLimit),
			janitor: store,
			close:   func() {},
		}, nil
	case driverPostgres:
		if err := config.Load(pgCfg); err != nil {
			return backend{}, err
		}
		pool, err := pg.Connect(ctx, *pgCfg)
		if err != nil {
			return backend{}, err
		}
		if err := pg.Migrate(ctx, pool, pgstore.Migrations, pgstore.MigrationsDir, *pgCfg, log); err != nil {
			pool.Close()
			return backend{}, err
		}
		*checks = append(*checks, httpserver.Check{Name: "postgres", Probe: pg.Healthcheck(pool)})
		store := pgstore.New(pool)
		return backend{
			storage: store,
			audit:   pgstore.NewAuditStorage(pool),
			janitor: store,
			close:   pool.Close,
		}, nil
	default:
		return backend{}, fmt.Errorf("unknown STORAGE_DRIVER %q", app.StorageDriver)
	}
}

func rateLimitStore(driver string, rdb *goredis.Client) (ratelimiter.Store, func(), error) {
	switch driver {
	case driverMemory:
		ms := ratelimiter.NewMemoryStore()
		return ms, ms.Close, nil
	case driverRedis:
		return ratelimiter.NewRedisStore(rdb), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown RATE_LIMIT_STORE %q", driver)
	}
}

func runJanitor(ctx context.Context, j challengeJanitor, every, retention time.Duration, log *slog.Logger) {
	log = log.With(logger.Component("janitor"))
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := j.DeleteExpiredChallenges(ctx, time.Now().Add(-retention))
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					log.Error("failed to prune challenges", logger.Error(err))
				}
				continue
			}
			if n > 0 {
				log.Info("pruned expired challenges", slog.Int64("count", n))
			}
		}
	}
}

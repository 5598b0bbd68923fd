package deviceauth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/devicekey/pkg/clientip"
	"github.com/dmitrymomot/devicekey/pkg/httpserver"
	"github.com/dmitrymomot/devicekey/pkg/logger"
	"github.com/dmitrymomot/devicekey/pkg/ratelimiter"
	"github.com/dmitrymomot/devicekey/pkg/requestid"
)

type Mountable interface {
	Handle() http.Handler
}

// RouterOptions configures the service router. Everything except API is optional.
type RouterOptions struct {
	API    Mountable
	Logger *slog.Logger

	// Checks back GET /health/ready.
	Checks []httpserver.Check

	// IPLimiter, when set, limits every API request per client IP.
	IPLimiter ratelimiter.RateLimiter

	// TrustProxyHeaders resolves client IPs from X-Forwarded-For and friends.
	TrustProxyHeaders bool
}

// Router creates the service router: health probes outside rate limiting,
// the API mounted at the root behind the per-IP limiter.
//
// Example:
//
//	api := deviceauth.NewAPI(svc, store, deviceauth.WithLogger(log))
//	r := deviceauth.Router(deviceauth.RouterOptions{
//		API:    api,
//		Logger: log,
//		Checks: []httpserver.Check{{Name: "postgres", Probe: pg.Healthcheck(pool)}},
//	})
func Router(opts RouterOptions) chi.Router {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	r := chi.NewRouter()
	r.Use(
		requestid.Middleware,
		clientip.Middleware(opts.TrustProxyHeaders),
		middleware.Recoverer,
		accessLog(log),
	)

	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(log, opts.Checks...))

	if opts.API != nil {
		r.Group(func(r chi.Router) {
			if opts.IPLimiter != nil {
				r.Use(ratelimiter.Middleware(opts.IPLimiter, ratelimiter.ByIP, log))
			}
			r.Mount("/", opts.API.Handle())
		})
	}

	return r
}

// accessLog writes one record per request once the response is complete.
func accessLog(log *slog.Logger) func(http.Handler) http.Handler {
	log = log.With(logger.Component("http"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.LogAttrs(r.Context(), slog.LevelInfo, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Int("bytes", ww.BytesWritten()),
				logger.Duration(time.Since(start)),
			)
		})
	}
}

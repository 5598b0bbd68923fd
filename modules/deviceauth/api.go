package deviceauth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/devicekey/handler"
	"github.com/dmitrymomot/devicekey/pkg/audit"
	"github.com/dmitrymomot/devicekey/pkg/binder"
	"github.com/dmitrymomot/devicekey/pkg/logger"
	"github.com/dmitrymomot/devicekey/pkg/otpauth"
	"github.com/dmitrymomot/devicekey/pkg/ratelimiter"
	authsvc "github.com/dmitrymomot/devicekey/svc/deviceauth"
)

// Authenticator is the protocol surface served over HTTP.
// *authsvc.Service implements it.
type Authenticator interface {
	RegisterDevice(ctx context.Context, p authsvc.RegisterDeviceParams) (authsvc.Device, error)
	BeginAuth(ctx context.Context, userID uuid.UUID) (authsvc.Challenge, error)
	GetChallenge(ctx context.Context, challengeID uuid.UUID) (authsvc.ChallengeView, error)
	Approve(ctx context.Context, challengeID, deviceID uuid.UUID, signature []byte) error
	SetupTOTPSecret(ctx context.Context, userID uuid.UUID, base32Secret string) error
	ImportTOTPURI(ctx context.Context, userID uuid.UUID, uri string) (otpauth.ParsedOTP, error)
	EnrollTOTP(ctx context.Context, userID uuid.UUID, issuer, account string) (authsvc.Enrollment, error)
	VerifyTOTPCode(ctx context.Context, userID uuid.UUID, code string) error
	RedeemRecoveryCode(ctx context.Context, userID uuid.UUID, code string) error
}

// UserRegistry provisions user IDs owned by an upstream identity system.
type UserRegistry interface {
	EnsureUser(ctx context.Context, userID uuid.UUID) error
}

// API serves the device authentication endpoints.
type API struct {
	auth           Authenticator
	users          UserRegistry
	auditReader    audit.Reader
	log            *slog.Logger
	errorHandler   handler.ErrorHandler[handler.Context]
	verifyLimiter  ratelimiter.RateLimiter
	beginLimiter   ratelimiter.RateLimiter
	approveLimiter ratelimiter.RateLimiter
}

type Option func(*API)

func WithLogger(log *slog.Logger) Option {
	return func(a *API) {
		if log != nil {
			a.log = log
		}
	}
}

// WithVerifyLimiter limits TOTP verification attempts per user.
func WithVerifyLimiter(l ratelimiter.RateLimiter) Option {
	return func(a *API) { a.verifyLimiter = l }
}

// WithBeginLimiter limits sign-in challenges (and push notifications) per user.
func WithBeginLimiter(l ratelimiter.RateLimiter) Option {
	return func(a *API) { a.beginLimiter = l }
}

// WithApproveLimiter limits approval attempts per challenge.
func WithApproveLimiter(l ratelimiter.RateLimiter) Option {
	return func(a *API) { a.approveLimiter = l }
}

// WithAuditReader mounts GET /users/{id}/events over r.
func WithAuditReader(r audit.Reader) Option {
	return func(a *API) { a.auditReader = r }
}

// NewAPI returns the HTTP surface of auth. users may be nil, in which case
// PUT /users/{id} is not mounted.
func NewAPI(auth Authenticator, users UserRegistry, opts ...Option) *API {
	a := &API{
		auth:  auth,
		users: users,
		log:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.errorHandler = handler.NewErrorHandler(a.log, Classify)
	return a
}

// Handle returns a router with every endpoint mounted at its root.
func (a *API) Handle() http.Handler {
	r := chi.NewRouter()

	if a.users != nil {
		r.Put("/users/{id}", wrap(a, a.ensureUser, binder.Path(chi.URLParam)))
	}
	if a.auditReader != nil {
		r.Get("/users/{id}/events", wrap(a, a.listEvents, bindAll(binder.Path(chi.URLParam), binder.Query())))
	}

	r.Post("/device/register", wrap(a, a.registerDevice, binder.JSON()))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/begin", wrap(a, a.beginAuth, binder.JSON(),
			limitBy[BeginAuthRequest](a.beginLimiter, scopeBegin),
		))
		r.Get("/challenge/{id}", wrap(a, a.getChallenge, binder.Path(chi.URLParam)))
		r.Post("/approve", wrap(a, a.approve, binder.JSON(),
			limitBy[ApproveRequest](a.approveLimiter, scopeApprove),
		))
	})

	r.Route("/totp", func(r chi.Router) {
		r.Post("/setup", wrap(a, a.setupTOTP, binder.JSON()))
		r.Post("/verify", wrap(a, a.verifyTOTP, binder.JSON(),
			limitBy[VerifyTOTPRequest](a.verifyLimiter, scopeTOTP),
		))
		r.Post("/recover", wrap(a, a.recoverTOTP, binder.JSON(),
			limitBy[RecoverTOTPRequest](a.verifyLimiter, scopeTOTP),
		))
		r.Post("/import", wrap(a, a.importTOTP, binder.JSON()))
		r.Post("/enroll", wrap(a, a.enrollTOTP, binder.JSON()))
	})

	return r
}

// wrap binds with b, applies decorators and routes failures through the
// API's error handler.
func wrap[R any](a *API, h handler.HandlerFunc[handler.Context, R], b handler.Bind, decorators ...handler.Decorator[handler.Context, R]) http.HandlerFunc {
	return handler.Wrap(h,
		handler.WithBinders[handler.Context, R](b),
		handler.WithDecorators(decorators...),
		handler.WithErrorHandler[handler.Context, R](a.errorHandler),
	)
}

// bindAll runs binders in order and stops at the first error.
func bindAll(binders ...handler.Bind) handler.Bind {
	return func(r *http.Request, v any) error {
		for _, b := range binders {
			if err := b(r, v); err != nil {
				return err
			}
		}
		return nil
	}
}

package deviceauth

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/devicekey/handler"
	"github.com/dmitrymomot/devicekey/pkg/logger"
	"github.com/dmitrymomot/devicekey/pkg/ratelimiter"
)

// Rate limit scopes, prefixed to the per-request key.
const (
	scopeBegin   = "begin"
	scopeApprove = "approve"
	scopeTOTP    = "totp"
)

// limitKeyer is implemented by requests that can be rate limited.
type limitKeyer interface {
	limitKey() string
}

// limitBy consumes one token from l under scope:key before calling the
// handler. Requests reach it already validated, so the key is never empty.
// A nil limiter disables the check.
func limitBy[R limitKeyer](l ratelimiter.RateLimiter, scope string) handler.Decorator[handler.Context, R] {
	return func(next handler.HandlerFunc[handler.Context, R]) handler.HandlerFunc[handler.Context, R] {
		if l == nil {
			return next
		}
		return func(ctx handler.Context, req R) handler.Response {
			result, err := l.Allow(ctx, scope+":"+req.limitKey())
			if err != nil {
				return handler.Error(err)
			}
			ratelimiter.SetHeaders(ctx.ResponseWriter(), result, time.Now())
			if !result.Allowed() {
				return handler.Error(ErrTooManyAttempts)
			}
			return next(ctx, req)
		}
	}
}

// resetLimit clears scope:key after a successful attempt. Failures are
// logged; the response has already been decided.
func (a *API) resetLimit(ctx context.Context, l ratelimiter.RateLimiter, scope, key string) {
	if l == nil {
		return
	}
	if err := l.Reset(ctx, scope+":"+key); err != nil {
		a.log.WarnContext(ctx, "failed to reset rate limit",
			slog.String("scope", scope), logger.Error(err))
	}
}

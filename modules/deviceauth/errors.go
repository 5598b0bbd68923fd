package deviceauth

import (
	"errors"

	"github.com/dmitrymomot/devicekey/handler"
	"github.com/dmitrymomot/devicekey/pkg/ratelimiter"
	authsvc "github.com/dmitrymomot/devicekey/svc/deviceauth"
)

// ErrTooManyAttempts is returned when a per-user or per-challenge limit is hit.
var ErrTooManyAttempts = errors.New("too many attempts, retry later")

var kindStatus = []struct {
	kind   error
	status handler.HTTPError
}{
	{authsvc.ErrValidation, handler.ErrBadRequest},
	{authsvc.ErrNotFound, handler.ErrNotFound},
	{authsvc.ErrGone, handler.ErrGone},
	{authsvc.ErrUnauthorized, handler.ErrUnauthorized},
	{authsvc.ErrDependencyUnavailable, handler.ErrFailedDependency},
	{authsvc.ErrInternal, handler.ErrInternalServerError},
	{ErrTooManyAttempts, handler.ErrTooManyRequests},
	{ratelimiter.ErrStoreUnavailable, handler.ErrServiceUnavailable},
}

// Classify maps service error kinds to HTTP statuses:
// Validation 400, NotFound 404, Gone 410, Unauthorized 401,
// DependencyUnavailable 424, Internal 500.
func Classify(err error) (handler.HTTPError, bool) {
	for _, ks := range kindStatus {
		if errors.Is(err, ks.kind) {
			return ks.status, true
		}
	}
	return handler.HTTPError{}, false
}

package push

import "errors"

var (
	ErrInvalidURL      = errors.New("invalid push gateway URL")
	ErrMissingToken    = errors.New("missing device push token")
	ErrDeliveryFailed  = errors.New("push delivery failed")
	ErrTimeout         = errors.New("push gateway request timeout")
	ErrCircuitOpen     = errors.New("push gateway circuit breaker is open")
	ErrInvalidSecret   = errors.New("push signing secret is required")
	ErrSignatureFailed = errors.New("push signature verification failed")
)

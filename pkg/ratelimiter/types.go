package ratelimiter

import "time"

// Result contains the result of a rate limit check.
type Result struct {
	Limit     int       // Maximum tokens (bucket capacity)
	Remaining int       // Tokens left after this call; negative when denied
	ResetAt   time.Time // Time of the next refill
}

// Allowed returns whether the request is allowed based on remaining tokens.
func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter returns how long to wait before the next request.
// Returns 0 if the request was allowed.
func (r *Result) RetryAfter(now time.Time) time.Duration {
	if r.Allowed() {
		return 0
	}
	return max(0, r.ResetAt.Sub(now))
}

// Config defines the token bucket configuration. The env tags are relative;
// see ConfigFromEnv.
type Config struct {
	Capacity       int           `env:"CAPACITY"`        // Maximum tokens the bucket can hold (burst limit)
	RefillRate     int           `env:"REFILL_RATE"`     // Number of tokens added per refill interval
	RefillInterval time.Duration `env:"REFILL_INTERVAL"` // How often tokens are added
}

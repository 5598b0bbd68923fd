// Package ratelimiter provides token bucket rate limiting with memory and
// Redis backends plus HTTP middleware.
//
// A bucket holds up to Capacity tokens and regains RefillRate tokens every
// RefillInterval. A call that needs more tokens than are left is denied
// without draining the bucket, so rejected retries do not extend a lockout.
//
//	store := ratelimiter.NewMemoryStore()
//	defer store.Close()
//
//	limiter, err := ratelimiter.NewBucket(store, ratelimiter.Config{
//		Capacity:       5,
//		RefillRate:     1,
//		RefillInterval: time.Minute,
//	})
//	if err != nil {
//		return err
//	}
//
//	result, err := limiter.Allow(ctx, "totp:"+userID.String())
//	if err != nil {
//		return err
//	}
//	if !result.Allowed() {
//		// wait result.RetryAfter(time.Now())
//	}
//
// NewRedisStore keeps buckets in Redis hashes updated by a Lua script, so
// several replicas share one limit.
//
// Middleware applies a limiter to every request keyed by a KeyFunc such as
// ByIP and writes X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Reset
// and, when denied, Retry-After with a JSON 429 body.
package ratelimiter

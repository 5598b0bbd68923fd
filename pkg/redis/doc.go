// Package redis connects devicekey to Redis through go-redis/v9.
//
// Connect parses REDIS_URL, then pings with a constant backoff until the
// server is ready. Healthcheck wraps a ping for readiness probes. The
// challenge store in svc/deviceauth/redisstore is the main consumer.
package redis

package push

import (
	"net/http"
	"time"
)

// Option configures a GatewaySender.
type Option func(*GatewaySender)

// WithTimeout bounds each delivery attempt. Default is 5 seconds.
func WithTimeout(d time.Duration) Option {
	return func(s *GatewaySender) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *GatewaySender) {
		if client != nil {
			s.client = client
		}
	}
}

// WithHeader adds a static header to every gateway request, e.g. an API key.
func WithHeader(key, value string) Option {
	return func(s *GatewaySender) {
		if key != "" && value != "" {
			s.headers[key] = value
		}
	}
}

// WithSigningSecret enables HMAC-SHA256 request signing.
func WithSigningSecret(secret string) Option {
	return func(s *GatewaySender) {
		s.signingSecret = secret
	}
}

// WithBreaker guards the gateway with a circuit breaker.
func WithBreaker(b *Breaker) Option {
	return func(s *GatewaySender) {
		s.breaker = b
	}
}

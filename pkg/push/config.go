package push

import "time"

type Config struct {
	GatewayURL    string        `env:"PUSH_GATEWAY_URL"`                  // GatewayURL is the push relay endpoint. Empty disables push.
	Timeout       time.Duration `env:"PUSH_TIMEOUT" envDefault:"5s"`      // Timeout bounds a single delivery attempt.
	SigningSecret string        `env:"PUSH_SIGNING_SECRET"`               // SigningSecret enables request signing when set.
	FailureLimit  int           `env:"PUSH_FAILURE_LIMIT" envDefault:"5"` // FailureLimit opens the breaker after that many consecutive failures.
	Cooldown      time.Duration `env:"PUSH_COOLDOWN" envDefault:"30s"`    // Cooldown is how long the breaker stays open.
}

// NewFromConfig returns a GatewaySender for cfg, or a NoopSender when no
// gateway URL is configured.
func NewFromConfig(cfg Config, opts ...Option) (Sender, error) {
	if cfg.GatewayURL == "" {
		return NoopSender{}, nil
	}

	configOpts := []Option{
		WithTimeout(cfg.Timeout),
		WithBreaker(NewBreaker(cfg.FailureLimit, 2, cfg.Cooldown)),
	}
	if cfg.SigningSecret != "" {
		configOpts = append(configOpts, WithSigningSecret(cfg.SigningSecret))
	}

	return NewGatewaySender(cfg.GatewayURL, append(configOpts, opts...)...)
}

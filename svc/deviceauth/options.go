package deviceauth

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/devicekey/pkg/audit"
	"github.com/dmitrymomot/devicekey/pkg/push"
)

type Option func(*Service)

func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithClock replaces time.Now. Used by tests to move through challenge expiry
// and TOTP windows.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithAttestor(a Attestor) Option {
	return func(s *Service) {
		if a != nil {
			s.attestor = a
		}
	}
}

// WithPusher sets the sender used to notify devices of new challenges.
// Default is push.NoopSender.
func WithPusher(p push.Sender) Option {
	return func(s *Service) {
		if p != nil {
			s.pusher = p
		}
	}
}

// WithChallengeStorage keeps challenges in a separate store (e.g. Redis)
// instead of the main Storage.
func WithChallengeStorage(cs ChallengeStorage) Option {
	return func(s *Service) {
		if cs != nil {
			s.challenges = cs
		}
	}
}

func WithChallengeTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.challengeTTL = ttl
		}
	}
}

// WithIssuer sets the issuer written into enrollment URIs.
func WithIssuer(issuer string) Option {
	return func(s *Service) {
		if issuer != "" {
			s.issuer = issuer
		}
	}
}

func WithQRCodeSize(px int) Option {
	return func(s *Service) {
		if px > 0 {
			s.qrSize = px
		}
	}
}

// WithAuditor records security events (registrations, challenges, TOTP
// results). Nothing is recorded by default.
func WithAuditor(r audit.Recorder) Option {
	return func(s *Service) {
		s.auditor = r
	}
}

// WithRecoveryCodeCount sets how many recovery codes EnrollTOTP issues.
// Values below 1 are ignored.
func WithRecoveryCodeCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.recoveryN = n
		}
	}
}

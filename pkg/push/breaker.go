package push

import (
	"sync"
	"time"
)

// BreakerState is the state of a Breaker.
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Breaker stops requests to a gateway after repeated failures.
// Safe for concurrent use.
type Breaker struct {
	mu sync.Mutex

	failureLimit int
	successLimit int
	cooldown     time.Duration
	now          func() time.Time

	state     BreakerState
	failures  int
	successes int
	openedAt  time.Time
}

// NewBreaker opens after failureLimit consecutive failures, probes again after
// cooldown, and closes after successLimit consecutive probe successes.
func NewBreaker(failureLimit, successLimit int, cooldown time.Duration) *Breaker {
	if failureLimit <= 0 {
		failureLimit = 5
	}
	if successLimit <= 0 {
		successLimit = 2
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &Breaker{
		failureLimit: failureLimit,
		successLimit: successLimit,
		cooldown:     cooldown,
		now:          time.Now,
	}
}

// Allow reports whether a request may proceed. An open breaker turns
// half-open once the cooldown has elapsed.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerOpen {
		if b.now().Sub(b.openedAt) < b.cooldown {
			return false
		}
		b.state = BreakerHalfOpen
		b.successes = 0
	}
	return true
}

func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		b.failures = 0
	case BreakerHalfOpen:
		b.successes++
		if b.successes >= b.successLimit {
			b.state = BreakerClosed
			b.failures = 0
			b.successes = 0
		}
	}
}

func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		b.failures++
		if b.failures >= b.failureLimit {
			b.state = BreakerOpen
			b.openedAt = b.now()
		}
	case BreakerHalfOpen:
		b.state = BreakerOpen
		b.openedAt = b.now()
		b.successes = 0
	}
}

// State returns the current state without triggering transitions.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

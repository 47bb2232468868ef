package hardware

import (
	"log/slog"
	"sync"
	"time"
)

// BreakerState is the circuit breaker state machine position.
type BreakerState int

// Breaker states.
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

// Default breaker tuning. An animation loop pushes frames at tens of
// Hz; the breaker bounds how much work is wasted against a backend
// that is already failing.
const (
	defaultBreakerThreshold = 5
	defaultBreakerCooldown  = 30 * time.Second
)

// TransitionFunc observes breaker state changes, e.g. for metrics.
type TransitionFunc func(name string, from, to BreakerState)

// Breaker wraps a backend operation with the circuit breaker pattern:
// Closed until threshold consecutive failures, then Open (calls
// short-circuit without invoking the operation) until cooldown
// elapses, then HalfOpen to let one call test recovery.
type Breaker struct {
	name         string
	threshold    int
	cooldown     time.Duration
	logger       *slog.Logger
	onTransition TransitionFunc
	now          func() time.Time

	mu          sync.Mutex
	state       BreakerState
	failures    int
	lastFailure time.Time
}

// NewBreaker creates a breaker in the Closed state. threshold <= 0 and
// cooldown <= 0 select the defaults.
func NewBreaker(name string, threshold int, cooldown time.Duration, logger *slog.Logger) *Breaker {
	if threshold <= 0 {
		threshold = defaultBreakerThreshold
	}
	if cooldown <= 0 {
		cooldown = defaultBreakerCooldown
	}
	return &Breaker{
		name:      name,
		threshold: threshold,
		cooldown:  cooldown,
		logger:    logger,
		now:       time.Now,
	}
}

// OnTransition registers a callback invoked on every state change.
func (b *Breaker) OnTransition(fn TransitionFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onTransition = fn
}

// State returns the current state, accounting for cooldown expiry.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == BreakerOpen && b.now().Sub(b.lastFailure) >= b.cooldown {
		return BreakerHalfOpen
	}
	return b.state
}

// Do invokes fn unless the breaker is Open, in which case it returns
// ErrCircuitOpen without calling fn. The lock is held across fn; the
// controller already serializes hardware mutation, so a breaker never
// sees concurrent callers in practice.
func (b *Breaker) Do(fn func() error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerOpen {
		if b.now().Sub(b.lastFailure) < b.cooldown {
			return ErrCircuitOpen
		}
		b.transition(BreakerHalfOpen)
	}

	err := fn()
	if err != nil {
		b.failures++
		b.lastFailure = b.now()
		switch {
		case b.state == BreakerHalfOpen:
			b.transition(BreakerOpen)
		case b.failures >= b.threshold:
			b.logger.Warn("Circuit breaker opening",
				"backend", b.name, "failures", b.failures, "cooldown", b.cooldown)
			b.transition(BreakerOpen)
		}
		return err
	}

	b.failures = 0
	if b.state != BreakerClosed {
		b.transition(BreakerClosed)
	}
	return nil
}

// transition must be called with the lock held.
func (b *Breaker) transition(to BreakerState) {
	from := b.state
	b.state = to
	if to == BreakerClosed {
		b.failures = 0
	}
	b.logger.Debug("Circuit breaker state change",
		"backend", b.name, "from", from.String(), "to", to.String())
	if b.onTransition != nil {
		b.onTransition(b.name, from, to)
	}
}

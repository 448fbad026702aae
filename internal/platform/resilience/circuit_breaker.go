package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// CircuitBreakerConfig is the env-facing shape of a breaker. Zero values fall
// back to the defaults below.
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

const (
	defaultFailureThreshold = 5
	defaultOpenTimeout      = 15 * time.Second
	defaultHalfOpenMaxReq   = 2
)

// Build returns the breaker cfg describes. A disabled config yields a breaker
// that admits every call, so clients never branch on Enabled.
func (cfg CircuitBreakerConfig) Build() *CircuitBreaker {
	b := NewCircuitBreaker(cfg.FailureThreshold, cfg.OpenTimeout, cfg.HalfOpenMaxReq)
	b.disabled = !cfg.Enabled
	return b
}

// CircuitBreaker opens after a run of consecutive failures, rejects calls for
// openTimeout, then admits up to halfOpenMaxReq probes. That many successful
// probes close it again; any failed probe reopens it.
type CircuitBreaker struct {
	mu       sync.Mutex
	disabled bool

	threshold   int
	openTimeout time.Duration
	probeLimit  int

	state     CircuitState
	failures  int
	openedAt  time.Time
	inFlight  int
	succeeded int
	now       func() time.Time
}

func NewCircuitBreaker(failureThreshold int, openTimeout time.Duration, halfOpenMaxReq int) *CircuitBreaker {
	if failureThreshold < 1 {
		failureThreshold = defaultFailureThreshold
	}
	if openTimeout <= 0 {
		openTimeout = defaultOpenTimeout
	}
	if halfOpenMaxReq < 1 {
		halfOpenMaxReq = defaultHalfOpenMaxReq
	}

	return &CircuitBreaker{
		threshold:   failureThreshold,
		openTimeout: openTimeout,
		probeLimit:  halfOpenMaxReq,
		state:       CircuitStateClosed,
		now:         time.Now,
	}
}

// Allow reserves a slot for one call. Every nil return must be paired with a
// Report.
func (b *CircuitBreaker) Allow() error {
	if b.disabled {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen {
		if b.now().Sub(b.openedAt) < b.openTimeout {
			return ErrCircuitOpen
		}
		b.enter(CircuitStateHalfOpen)
	}
	if b.state == CircuitStateHalfOpen {
		if b.inFlight >= b.probeLimit {
			return ErrCircuitOpen
		}
		b.inFlight++
	}
	return nil
}

// Report records the outcome of a call admitted by Allow.
func (b *CircuitBreaker) Report(failed bool) {
	if b.disabled {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		if !failed {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.threshold {
			b.enter(CircuitStateOpen)
		}
	case CircuitStateHalfOpen:
		if b.inFlight > 0 {
			b.inFlight--
		}
		if failed {
			b.enter(CircuitStateOpen)
			return
		}
		b.succeeded++
		if b.succeeded >= b.probeLimit && b.inFlight == 0 {
			b.enter(CircuitStateClosed)
		}
	case CircuitStateOpen:
		if failed {
			b.openedAt = b.now()
		}
	}
}

// Execute runs fn under the breaker. counts decides which errors are charged
// to the dependency; nil charges every error.
func (b *CircuitBreaker) Execute(fn func() error, counts func(error) bool) error {
	if err := b.Allow(); err != nil {
		return err
	}
	err := fn()
	b.Report(err != nil && (counts == nil || counts(err)))
	return err
}

func (b *CircuitBreaker) State() CircuitState {
	if b.disabled {
		return CircuitStateClosed
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen && b.now().Sub(b.openedAt) >= b.openTimeout {
		return CircuitStateHalfOpen
	}
	return b.state
}

func (b *CircuitBreaker) enter(state CircuitState) {
	b.state = state
	b.failures = 0
	b.inFlight = 0
	b.succeeded = 0
	b.openedAt = time.Time{}
	if state == CircuitStateOpen {
		b.openedAt = b.now()
	}
}

package clients

import (
	"sync"
	"time"
)

// State represents the current state of the circuit breaker.
type State int

const (
	// StateClosed lets every request through.
	StateClosed State = iota

	// StateOpen blocks requests until the open timeout elapses.
	StateOpen

	// StateHalfOpen lets a limited number of probes through.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig configures the circuit breaker behavior.
type CircuitBreakerConfig struct {
	// MaxFailures is the number of consecutive failures before the circuit opens.
	MaxFailures int

	// Timeout is how long the circuit stays open before probing.
	Timeout time.Duration

	// HalfOpenLimit is both the number of concurrent probes and the number of
	// consecutive probe successes needed to close the circuit.
	HalfOpenLimit int
}

// CircuitBreaker stops calling the quote server after repeated failures.
//
// State transitions:
//   - Closed → Open: After MaxFailures consecutive failures
//   - Open → HalfOpen: After Timeout has passed
//   - HalfOpen → Closed: After HalfOpenLimit consecutive successes
//   - HalfOpen → Open: On any failure
type CircuitBreaker struct {
	mu          sync.Mutex
	state       State
	failures    int
	successes   int
	probes      int
	lastFailure time.Time
	cfg         CircuitBreakerConfig

	onStateChange func(from, to State)
	now           func() time.Time
}

// NewCircuitBreaker creates a closed circuit breaker.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.MaxFailures < 1 {
		cfg.MaxFailures = 1
	}

	if cfg.HalfOpenLimit < 1 {
		cfg.HalfOpenLimit = 1
	}

	return &CircuitBreaker{
		state: StateClosed,
		cfg:   cfg,
		now:   time.Now,
	}
}

// OnStateChange registers fn to run after every transition. fn runs on the
// caller's goroutine once the breaker's lock has been released.
func (cb *CircuitBreaker) OnStateChange(fn func(from, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.onStateChange = fn
}

// Allow reports whether a request may proceed. An open circuit whose timeout
// has elapsed moves to half-open and admits the caller as the first probe.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()

	var (
		allowed bool
		notify  func()
	)

	switch cb.state {
	case StateClosed:
		allowed = true

	case StateOpen:
		if cb.now().Sub(cb.lastFailure) >= cb.cfg.Timeout {
			notify = cb.transitionTo(StateHalfOpen)
			cb.probes = 1
			allowed = true
		}

	case StateHalfOpen:
		if cb.probes < cb.cfg.HalfOpenLimit {
			cb.probes++
			allowed = true
		}
	}

	cb.mu.Unlock()
	run(notify)

	return allowed
}

// RecordSuccess records a successful request.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()

	var notify func()

	switch cb.state {
	case StateClosed:
		cb.failures = 0

	case StateHalfOpen:
		cb.probes = max(cb.probes-1, 0)
		cb.successes++

		if cb.successes >= cb.cfg.HalfOpenLimit {
			notify = cb.transitionTo(StateClosed)
		}
	}

	cb.mu.Unlock()
	run(notify)
}

// RecordFailure records a failed request. Any failure while half-open
// reopens the circuit.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()

	var notify func()

	cb.lastFailure = cb.now()

	switch cb.state {
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.cfg.MaxFailures {
			notify = cb.transitionTo(StateOpen)
		}

	case StateHalfOpen:
		cb.probes = max(cb.probes-1, 0)
		notify = cb.transitionTo(StateOpen)
	}

	cb.mu.Unlock()
	run(notify)
}

// State returns the current state of the circuit breaker.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.state
}

// transitionTo must be called with the lock held. It returns the callback
// invocation to run after unlocking, or nil.
func (cb *CircuitBreaker) transitionTo(next State) func() {
	if cb.state == next {
		return nil
	}

	from := cb.state
	cb.state = next
	cb.failures = 0
	cb.successes = 0

	if next != StateHalfOpen {
		cb.probes = 0
	}

	if fn := cb.onStateChange; fn != nil {
		return func() { fn(from, next) }
	}

	return nil
}

func run(fn func()) {
	if fn != nil {
		fn()
	}
}

package resilience

import (
	"errors"
	"sync"
	"time"

	"dev.supermcp.debate/internal/config"
	"dev.supermcp.debate/internal/models"
)

// ErrCircuitOpen is returned when a provider's circuit is open and the cooldown
// has not elapsed.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreaker is the per-provider state machine that keeps traffic away from
// a failing backend. Transitions:
//
//	Closed    -> Open:     consecutive failures reach FailureThreshold
//	Open      -> HalfOpen: evaluated lazily on Allow once OpenTimeout elapsed
//	HalfOpen  -> Closed:   consecutive successes reach SuccessThreshold
//	HalfOpen  -> Open:     any failure
type CircuitBreaker struct {
	mu                   sync.RWMutex
	provider             models.Provider
	config               config.CircuitConfig
	state                models.CircuitState
	consecutiveFailures  int
	consecutiveSuccesses int
	lastFailure          time.Time
	lastStateChange      time.Time
	totalRequests        int64
	totalFailures        int64
	totalSuccesses       int64
	activations          int64
}

// NewCircuitBreaker creates a breaker in the closed state.
func NewCircuitBreaker(provider models.Provider, cfg config.CircuitConfig) *CircuitBreaker {
	return &CircuitBreaker{
		provider:        provider,
		config:          cfg,
		state:           models.CircuitClosed,
		lastStateChange: time.Now(),
	}
}

// Allow reports whether a call may proceed, performing the lazy
// Open -> HalfOpen transition when the cooldown has elapsed.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.totalRequests++

	switch cb.state {
	case models.CircuitOpen:
		if time.Since(cb.lastFailure) >= cb.config.OpenTimeout {
			cb.transitionTo(models.CircuitHalfOpen)
			return nil
		}
		return ErrCircuitOpen
	case models.CircuitHalfOpen, models.CircuitClosed:
		return nil
	}
	return nil
}

// Callable reports whether a call would be allowed right now, without mutating
// state. Used when ordering the fallback chain.
func (cb *CircuitBreaker) Callable() bool {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	if cb.state != models.CircuitOpen {
		return true
	}
	return time.Since(cb.lastFailure) >= cb.config.OpenTimeout
}

// RecordSuccess advances the breaker after a successful call.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.totalSuccesses++
	cb.consecutiveSuccesses++
	cb.consecutiveFailures = 0

	if cb.state == models.CircuitHalfOpen && cb.consecutiveSuccesses >= cb.config.SuccessThreshold {
		cb.transitionTo(models.CircuitClosed)
	}
}

// RecordFailure advances the breaker after a failed call.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.totalFailures++
	cb.consecutiveFailures++
	cb.consecutiveSuccesses = 0
	cb.lastFailure = time.Now()

	switch cb.state {
	case models.CircuitClosed:
		if cb.consecutiveFailures >= cb.config.FailureThreshold {
			cb.transitionTo(models.CircuitOpen)
		}
	case models.CircuitHalfOpen:
		// Any failure while probing reopens immediately.
		cb.transitionTo(models.CircuitOpen)
	}
}

func (cb *CircuitBreaker) transitionTo(newState models.CircuitState) {
	cb.state = newState
	cb.lastStateChange = time.Now()

	switch newState {
	case models.CircuitOpen:
		cb.activations++
		cb.consecutiveSuccesses = 0
	case models.CircuitHalfOpen:
		cb.consecutiveSuccesses = 0
		cb.consecutiveFailures = 0
	case models.CircuitClosed:
		cb.consecutiveFailures = 0
	}
}

// State returns the current circuit state.
func (cb *CircuitBreaker) State() models.CircuitState {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

// IsOpen reports whether the circuit is open.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.State() == models.CircuitOpen
}

// Reset forces the breaker back to closed with cleared counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = models.CircuitClosed
	cb.consecutiveFailures = 0
	cb.consecutiveSuccesses = 0
	cb.lastStateChange = time.Now()
}

// CircuitStats is a point-in-time view of one breaker.
type CircuitStats struct {
	Provider             models.Provider     `json:"provider"`
	State                models.CircuitState `json:"state"`
	TotalRequests        int64               `json:"total_requests"`
	TotalSuccesses       int64               `json:"total_successes"`
	TotalFailures        int64               `json:"total_failures"`
	ConsecutiveFailures  int                 `json:"consecutive_failures"`
	ConsecutiveSuccesses int                 `json:"consecutive_successes"`
	Activations          int64               `json:"activations"`
	LastFailure          time.Time           `json:"last_failure,omitempty"`
	LastStateChange      time.Time           `json:"last_state_change"`
}

// Stats returns circuit breaker statistics.
func (cb *CircuitBreaker) Stats() CircuitStats {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return CircuitStats{
		Provider:             cb.provider,
		State:                cb.state,
		TotalRequests:        cb.totalRequests,
		TotalSuccesses:       cb.totalSuccesses,
		TotalFailures:        cb.totalFailures,
		ConsecutiveFailures:  cb.consecutiveFailures,
		ConsecutiveSuccesses: cb.consecutiveSuccesses,
		Activations:          cb.activations,
		LastFailure:          cb.lastFailure,
		LastStateChange:      cb.lastStateChange,
	}
}

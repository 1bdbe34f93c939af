// Package resilience keeps the voice pipeline responsive when a speech
// backend degrades. A [CircuitBreaker] stops the session from hammering an
// unreachable transcription or synthesis service, and a [FallbackGroup]
// fails over to the next configured provider (for example ElevenLabs down
// to console TTS) while the primary recovers.
package resilience

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrCircuitOpen is returned by [CircuitBreaker.Execute] when the breaker is
// rejecting calls because the backend failed too many times in a row.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State is the current position of a circuit breaker.
type State int

const (
	// StateClosed lets every call through. This is the healthy state.
	StateClosed State = iota
	// StateOpen rejects every call until the reset timeout elapses.
	StateOpen
	// StateHalfOpen lets a limited number of trial calls through to check
	// whether the backend has recovered.
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

// CircuitBreakerConfig configures a [CircuitBreaker]. Zero values fall back
// to defaults tuned for interactive voice sessions, where waiting half a
// minute on a dead transcription endpoint is not acceptable.
type CircuitBreakerConfig struct {
	// Name identifies the breaker in log output, usually the provider name.
	Name string
	// MaxFailures is the number of consecutive failures that opens the
	// breaker. Defaults to 3.
	MaxFailures int
	// ResetTimeout is how long the breaker stays open before probing the
	// backend again. Defaults to 15s.
	ResetTimeout time.Duration
	// HalfOpenMax is the number of trial calls allowed while half-open.
	// All of them must succeed to close the breaker. Defaults to 2.
	HalfOpenMax int
}

// CircuitBreaker guards calls to a single speech backend. After MaxFailures
// consecutive errors it opens and rejects calls with [ErrCircuitOpen]; once
// ResetTimeout has elapsed it admits up to HalfOpenMax trial calls and closes
// again only if every trial call succeeds.
//
// CircuitBreaker is safe for concurrent use.
type CircuitBreaker struct {
	name         string
	maxFailures  int
	resetTimeout time.Duration
	halfOpenMax  int

	now func() time.Time

	mu           sync.Mutex
	state        State
	failures     int
	openedAt     time.Time
	trials       int
	trialSuccess int
}

// NewCircuitBreaker creates a closed breaker from cfg, applying defaults for
// any zero field.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 3
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 15 * time.Second
	}
	if cfg.HalfOpenMax <= 0 {
		cfg.HalfOpenMax = 2
	}
	return &CircuitBreaker{
		name:         cfg.Name,
		maxFailures:  cfg.MaxFailures,
		resetTimeout: cfg.ResetTimeout,
		halfOpenMax:  cfg.HalfOpenMax,
		now:          time.Now,
		state:        StateClosed,
	}
}

// Execute runs fn if the breaker admits the call, recording the outcome.
// Returns [ErrCircuitOpen] without invoking fn when the breaker is open or
// the half-open trial budget is spent.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	trial, err := cb.allow()
	if err != nil {
		return err
	}
	callErr := fn()
	cb.record(trial, callErr)
	return callErr
}

// allow decides whether a call may proceed and reports whether it counts as
// a half-open trial call.
func (cb *CircuitBreaker) allow() (trial bool, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen {
		if cb.now().Sub(cb.openedAt) < cb.resetTimeout {
			return false, ErrCircuitOpen
		}
		cb.state = StateHalfOpen
		cb.trials = 0
		cb.trialSuccess = 0
		slog.Info("resilience: breaker half-open, testing backend", "name", cb.name)
	}
	if cb.state == StateHalfOpen {
		if cb.trials >= cb.halfOpenMax {
			return false, ErrCircuitOpen
		}
		cb.trials++
		return true, nil
	}
	return false, nil
}

func (cb *CircuitBreaker) record(trial bool, callErr error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if callErr == nil {
		if !trial {
			cb.failures = 0
			return
		}
		cb.trialSuccess++
		if cb.trialSuccess >= cb.halfOpenMax {
			cb.state = StateClosed
			cb.failures = 0
			slog.Info("resilience: breaker closed, backend recovered", "name", cb.name)
		}
		return
	}

	cb.openedAt = cb.now()
	if trial {
		// One failed trial call is enough evidence the backend is still down.
		cb.state = StateOpen
		slog.Warn("resilience: trial call failed, breaker re-opened", "name", cb.name)
		return
	}
	cb.failures++
	if cb.failures >= cb.maxFailures {
		cb.state = StateOpen
		slog.Warn("resilience: breaker opened",
			"name", cb.name, "failures", cb.failures)
	}
}

// State returns the breaker's effective state. An open breaker whose reset
// timeout has elapsed reports [StateHalfOpen], since the next call would be
// admitted as a trial.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == StateOpen && cb.now().Sub(cb.openedAt) >= cb.resetTimeout {
		return StateHalfOpen
	}
	return cb.state
}

// Reset forces the breaker closed and clears all counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.failures = 0
	cb.trials = 0
	cb.trialSuccess = 0
}

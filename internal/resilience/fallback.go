package resilience

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrAllFailed is returned when every provider in a [FallbackGroup] either
// failed or had an open circuit breaker.
var ErrAllFailed = errors.New("all providers failed")

// FallbackConfig configures the circuit breaker created for each provider
// in a [FallbackGroup].
type FallbackConfig struct {
	CircuitBreaker CircuitBreakerConfig
}

type fallbackEntry[T any] struct {
	name    string
	value   T
	breaker *CircuitBreaker
}

// FallbackGroup chains a primary provider with zero or more fallbacks of the
// same type, each guarded by its own circuit breaker. When the primary
// errors or its breaker is open, the next entry is tried in registration
// order. The session uses this to drop from a remote speech service to a
// local one without interrupting the conversation.
//
// FallbackGroup is safe for concurrent use.
type FallbackGroup[T any] struct {
	entries []fallbackEntry[T]
	cfg     FallbackConfig
}

// NewFallbackGroup creates a group with primary as the first entry. Register
// additional providers with [FallbackGroup.AddFallback].
func NewFallbackGroup[T any](primary T, primaryName string, cfg FallbackConfig) *FallbackGroup[T] {
	fg := &FallbackGroup[T]{cfg: cfg}
	fg.add(primaryName, primary)
	return fg
}

// AddFallback appends a provider tried after all earlier entries.
func (fg *FallbackGroup[T]) AddFallback(name string, fallback T) {
	fg.add(name, fallback)
}

func (fg *FallbackGroup[T]) add(name string, value T) {
	cbCfg := fg.cfg.CircuitBreaker
	cbCfg.Name = name
	fg.entries = append(fg.entries, fallbackEntry[T]{
		name:    name,
		value:   value,
		breaker: NewCircuitBreaker(cbCfg),
	})
}

// Execute tries fn against each entry in order until one succeeds. Entries
// with an open breaker are skipped. Returns [ErrAllFailed] wrapping the last
// error when no entry succeeds.
func (fg *FallbackGroup[T]) Execute(fn func(T) error) error {
	_, err := ExecuteWithResult(fg, func(v T) (struct{}, error) {
		return struct{}{}, fn(v)
	})
	return err
}

// ExecuteWithResult tries fn against each entry in the group until one
// succeeds, returning the result of the successful call. It is a package
// function rather than a method because Go methods cannot introduce the
// result type parameter R.
func ExecuteWithResult[T any, R any](fg *FallbackGroup[T], fn func(T) (R, error)) (R, error) {
	var (
		lastErr error
		zero    R
	)
	for i := range fg.entries {
		entry := &fg.entries[i]
		var result R
		err := entry.breaker.Execute(func() error {
			var innerErr error
			result, innerErr = fn(entry.value)
			return innerErr
		})
		if err == nil {
			return result, nil
		}
		lastErr = err
		if errors.Is(err, ErrCircuitOpen) {
			slog.Debug("resilience: skipping provider, circuit open",
				"provider", entry.name)
		} else {
			slog.Warn("resilience: provider failed, trying next",
				"provider", entry.name, "error", err)
		}
	}
	return zero, fmt.Errorf("%w: %v", ErrAllFailed, lastErr)
}

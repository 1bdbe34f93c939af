package resilience

import (
	"errors"
	"testing"
	"time"
)

var errBackendDown = errors.New("speech backend unreachable")

// fakeClock replaces a breaker's time source so tests can cross the reset
// timeout without sleeping.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(cfg CircuitBreakerConfig) (*CircuitBreaker, *fakeClock) {
	cb := NewCircuitBreaker(cfg)
	clock := &fakeClock{t: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	cb.now = clock.now
	return cb, clock
}

func failTimes(cb *CircuitBreaker, n int) {
	for i := 0; i < n; i++ {
		_ = cb.Execute(func() error { return errBackendDown })
	}
}

func TestNewCircuitBreaker_Defaults(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "whisper"})
	if cb.maxFailures != 3 {
		t.Errorf("maxFailures = %d, want 3", cb.maxFailures)
	}
	if cb.resetTimeout != 15*time.Second {
		t.Errorf("resetTimeout = %v, want 15s", cb.resetTimeout)
	}
	if cb.halfOpenMax != 2 {
		t.Errorf("halfOpenMax = %d, want 2", cb.halfOpenMax)
	}
	if cb.State() != StateClosed {
		t.Errorf("initial state = %v, want closed", cb.State())
	}
}

func TestCircuitBreaker_ClosedForwardsCalls(t *testing.T) {
	t.Parallel()

	cb, _ := newTestBreaker(CircuitBreakerConfig{Name: "whisper"})
	called := false
	if err := cb.Execute(func() error { called = true; return nil }); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !called {
		t.Fatal("fn was not called")
	}
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()

	cb, _ := newTestBreaker(CircuitBreakerConfig{Name: "elevenlabs", MaxFailures: 3})
	failTimes(cb, 3)

	if cb.State() != StateOpen {
		t.Fatalf("state = %v, want open", cb.State())
	}

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen", err)
	}
	if called {
		t.Fatal("fn was called while the breaker was open")
	}
}

func TestCircuitBreaker_SuccessClearsFailureStreak(t *testing.T) {
	t.Parallel()

	cb, _ := newTestBreaker(CircuitBreakerConfig{Name: "whisper", MaxFailures: 3})

	failTimes(cb, 2)
	_ = cb.Execute(func() error { return nil })
	failTimes(cb, 2)

	if cb.State() != StateClosed {
		t.Fatalf("state = %v, want closed (streak was broken by a success)", cb.State())
	}
}

func TestCircuitBreaker_ReportsHalfOpenAfterTimeout(t *testing.T) {
	t.Parallel()

	cb, clock := newTestBreaker(CircuitBreakerConfig{
		Name:         "elevenlabs",
		MaxFailures:  2,
		ResetTimeout: 15 * time.Second,
	})
	failTimes(cb, 2)
	if cb.State() != StateOpen {
		t.Fatal("expected open")
	}

	clock.advance(16 * time.Second)
	if cb.State() != StateHalfOpen {
		t.Fatalf("state = %v, want half-open once the timeout elapsed", cb.State())
	}
}

func TestCircuitBreaker_ClosesAfterSuccessfulTrials(t *testing.T) {
	t.Parallel()

	cb, clock := newTestBreaker(CircuitBreakerConfig{
		Name:         "whisper",
		MaxFailures:  2,
		ResetTimeout: 15 * time.Second,
		HalfOpenMax:  2,
	})
	failTimes(cb, 2)
	clock.advance(16 * time.Second)

	for i := 0; i < 2; i++ {
		if err := cb.Execute(func() error { return nil }); err != nil {
			t.Fatalf("trial %d: %v", i, err)
		}
	}
	if cb.State() != StateClosed {
		t.Fatalf("state = %v, want closed after successful trials", cb.State())
	}
}

func TestCircuitBreaker_ReopensWhenTrialFails(t *testing.T) {
	t.Parallel()

	cb, clock := newTestBreaker(CircuitBreakerConfig{
		Name:         "elevenlabs",
		MaxFailures:  2,
		ResetTimeout: 15 * time.Second,
		HalfOpenMax:  3,
	})
	failTimes(cb, 2)
	clock.advance(16 * time.Second)

	if err := cb.Execute(func() error { return errBackendDown }); err == nil {
		t.Fatal("expected the failing trial to return its error")
	}

	// The failure restarts the reset timeout, so the breaker is fully open.
	cb.mu.Lock()
	s := cb.state
	cb.mu.Unlock()
	if s != StateOpen {
		t.Fatalf("state = %v, want open after a failed trial", s)
	}
	if err := cb.Execute(func() error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen", err)
	}
}

func TestCircuitBreaker_SingleTrialClosesBreaker(t *testing.T) {
	t.Parallel()

	cb, clock := newTestBreaker(CircuitBreakerConfig{
		Name:         "whisper",
		MaxFailures:  2,
		ResetTimeout: 15 * time.Second,
		HalfOpenMax:  1,
	})
	failTimes(cb, 2)
	clock.advance(16 * time.Second)

	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("trial: %v", err)
	}
	if cb.State() != StateClosed {
		t.Fatalf("state = %v, want closed", cb.State())
	}
}

func TestCircuitBreaker_Reset(t *testing.T) {
	t.Parallel()

	cb, _ := newTestBreaker(CircuitBreakerConfig{
		Name:         "elevenlabs",
		MaxFailures:  2,
		ResetTimeout: time.Hour,
	})
	failTimes(cb, 2)
	if cb.State() != StateOpen {
		t.Fatal("expected open")
	}

	cb.Reset()
	if cb.State() != StateClosed {
		t.Fatalf("state = %v, want closed after Reset", cb.State())
	}
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("Execute after Reset: %v", err)
	}
}

func TestState_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state State
		want  string
	}{
		{StateClosed, "closed"},
		{StateOpen, "open"},
		{StateHalfOpen, "half-open"},
		{State(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

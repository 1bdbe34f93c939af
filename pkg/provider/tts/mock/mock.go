// Package mock provides a test double for the tts.Speaker interface.
//
// Inspect Utterances to verify what the session spoke and how often; set Err
// to exercise synthesis-failure handling (fallback chains, never-fatal
// degradation).
package mock

import (
	"context"
	"sync"

	"github.com/in2theCODE/MyCODEagent/pkg/provider/tts"
)

// Speaker is a mock implementation of tts.Speaker.
type Speaker struct {
	mu sync.Mutex

	// Err, if non-nil, is returned by every Speak call.
	Err error

	// Utterances records the text of every Speak call in order.
	Utterances []string
}

// Speak records the call and returns Err.
func (s *Speaker) Speak(_ context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Utterances = append(s.Utterances, text)
	return s.Err
}

// SpokenCount returns the number of Speak calls. Thread-safe.
func (s *Speaker) SpokenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Utterances)
}

// Spoken returns a copy of all recorded utterances. Thread-safe.
func (s *Speaker) Spoken() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]string, len(s.Utterances))
	copy(cp, s.Utterances)
	return cp
}

// Reset clears all recorded utterances. Thread-safe.
func (s *Speaker) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Utterances = nil
}

// Ensure Speaker implements tts.Speaker at compile time.
var _ tts.Speaker = (*Speaker)(nil)

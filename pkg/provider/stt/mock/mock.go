// Package mock provides a test double for the stt.Transcriber interface.
//
// Pre-populate Segments (or Err) with the result every Transcribe call should
// return, then inspect Calls to verify what audio was delivered and how often
// transcription was invoked (e.g., to assert that cheap energy gates
// short-circuit before the expensive transcription stage runs).
package mock

import (
	"context"
	"sync"

	"github.com/in2theCODE/MyCODEagent/pkg/provider/stt"
)

// TranscribeCall records a single invocation of Transcriber.Transcribe.
type TranscribeCall struct {
	// Samples is a copy of the sample buffer passed to Transcribe.
	Samples []float32
}

// Transcriber is a mock implementation of stt.Transcriber.
type Transcriber struct {
	mu sync.Mutex

	// Segments is returned by every Transcribe call when Err is nil.
	Segments []stt.Segment

	// Err, if non-nil, is returned as the error from Transcribe.
	Err error

	// Calls records every call to Transcribe in order.
	Calls []TranscribeCall
}

// Transcribe records the call and returns Segments, Err.
func (t *Transcriber) Transcribe(_ context.Context, samples []float32) ([]stt.Segment, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cp := make([]float32, len(samples))
	copy(cp, samples)
	t.Calls = append(t.Calls, TranscribeCall{Samples: cp})
	if t.Err != nil {
		return nil, t.Err
	}
	return t.Segments, nil
}

// CallCount returns the number of Transcribe calls. Thread-safe.
func (t *Transcriber) CallCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.Calls)
}

// Reset clears all recorded calls. Thread-safe.
func (t *Transcriber) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Calls = nil
}

// Ensure Transcriber implements stt.Transcriber at compile time.
var _ stt.Transcriber = (*Transcriber)(nil)

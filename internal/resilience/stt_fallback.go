package resilience

import (
	"context"

	"github.com/in2theCODE/MyCODEagent/pkg/provider/stt"
)

// STTFallback implements [stt.Transcriber] with automatic failover across
// multiple STT backends. Each backend has its own circuit breaker.
type STTFallback struct {
	group *FallbackGroup[stt.Transcriber]
}

// Compile-time interface assertion.
var _ stt.Transcriber = (*STTFallback)(nil)

// NewSTTFallback creates an [STTFallback] with primary as the preferred backend.
func NewSTTFallback(primary stt.Transcriber, primaryName string, cfg FallbackConfig) *STTFallback {
	return &STTFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional transcriber as a fallback.
func (f *STTFallback) AddFallback(name string, transcriber stt.Transcriber) {
	f.group.AddFallback(name, transcriber)
}

// Transcribe runs the samples through the first healthy backend.
func (f *STTFallback) Transcribe(ctx context.Context, samples []float32) ([]stt.Segment, error) {
	return ExecuteWithResult(f.group, func(t stt.Transcriber) ([]stt.Segment, error) {
		return t.Transcribe(ctx, samples)
	})
}

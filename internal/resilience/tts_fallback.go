package resilience

import (
	"context"

	"github.com/in2theCODE/MyCODEagent/pkg/provider/tts"
)

// TTSFallback implements [tts.Speaker] with automatic failover across multiple
// TTS backends. Each backend has its own circuit breaker.
//
// The usual arrangement is a network-backed voice as primary and the console
// speaker as the final fallback, so the assistant stays responsive when the
// synthesis API is unreachable.
type TTSFallback struct {
	group *FallbackGroup[tts.Speaker]
}

// Compile-time interface assertion.
var _ tts.Speaker = (*TTSFallback)(nil)

// NewTTSFallback creates a [TTSFallback] with primary as the preferred backend.
func NewTTSFallback(primary tts.Speaker, primaryName string, cfg FallbackConfig) *TTSFallback {
	return &TTSFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional speaker as a fallback.
func (f *TTSFallback) AddFallback(name string, speaker tts.Speaker) {
	f.group.AddFallback(name, speaker)
}

// Speak voices text through the first healthy backend.
func (f *TTSFallback) Speak(ctx context.Context, text string) error {
	return f.group.Execute(func(s tts.Speaker) error {
		return s.Speak(ctx, text)
	})
}

// Package tts defines the Speaker interface for Text-to-Speech backends.
//
// A speaker wraps a synthesis service (e.g., ElevenLabs) or a local fallback
// (console echo) behind a single blocking call: text in, audible speech out.
// Synthesis happens entirely on the background processing loop, never in the
// audio capture callback, so a blocking interface is acceptable here.
//
// Synthesis failures must never be fatal to a voice session; callers wrap the
// primary speaker in a fallback chain (see internal/resilience) so that a
// failing remote backend degrades to local echo.
//
// Implementations must be safe for concurrent use.
package tts

import "context"

// Speaker is the abstraction over any TTS backend.
type Speaker interface {
	// Speak synthesises text and plays it to completion. Returns an error if
	// synthesis or playback fails; callers decide whether to fall back to a
	// different backend.
	Speak(ctx context.Context, text string) error
}

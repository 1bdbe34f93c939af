// Package stt defines the Transcriber interface for Speech-to-Text backends.
//
// A transcriber wraps a local or remote recognition engine (e.g., whisper.cpp)
// and exposes a uniform batch interface: a finite buffer of PCM samples in, a
// finite sequence of Segment values out. Batch transcription fits the voice
// pipeline's buffered design: the standby accumulator and the active-listening
// queue both hand the background loop complete utterance buffers, never open
// streams.
//
// Transcribe may take hundreds of milliseconds; callers must only invoke it
// from the background processing loop, never from the audio capture callback.
//
// Implementations must be safe for concurrent use.
package stt

import "context"

// Segment is a contiguous piece of recognised speech.
type Segment struct {
	// Text is the transcribed speech content.
	Text string

	// Confidence is the recognition confidence (0.0–1.0). May be zero if the
	// backend does not report confidence.
	Confidence float64
}

// Transcriber is the abstraction over any STT backend.
type Transcriber interface {
	// Transcribe converts a finite buffer of mono PCM samples (normalized
	// float32, 16 kHz) into an ordered sequence of segments. An empty result
	// with a nil error means the backend recognised no speech.
	//
	// The call is restartable: each invocation is independent and the samples
	// slice is not retained after Transcribe returns.
	Transcribe(ctx context.Context, samples []float32) ([]Segment, error)
}

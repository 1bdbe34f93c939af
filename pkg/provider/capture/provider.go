// Package capture defines the Provider interface for microphone audio input
// backends.
//
// A capture provider owns the live input stream and invokes a caller-supplied
// callback once per fixed-size block of samples at the hardware's cadence
// (≈64 ms per 1024-sample block at 16 kHz). The callback runs on the audio
// subsystem's thread and must never block; it may only classify, buffer, or
// enqueue.
//
// Implementations must guarantee that after Stream.Stop returns, no further
// callback invocations occur.
package capture

import "github.com/in2theCODE/MyCODEagent/pkg/audio"

// StreamConfig describes the audio format for a new capture stream.
type StreamConfig struct {
	// SampleRate is the capture sample rate in Hz. Default: 16000.
	SampleRate int

	// FrameSize is the number of samples per callback block. Default: 1024.
	FrameSize int
}

// Callback is invoked once per captured frame. The frame's sample slice is
// only valid for the duration of the call; use Frame.Clone before retaining it.
type Callback func(frame audio.Frame)

// Stream represents a running capture stream.
type Stream interface {
	// Stop halts capture. After Stop returns, the callback will not be
	// invoked again. Calling Stop more than once is safe.
	Stop() error

	// Close releases all resources associated with the stream. Implies Stop.
	Close() error
}

// Provider is the abstraction over any audio input backend.
type Provider interface {
	// Open starts a capture stream delivering frames to cb. Returns an error
	// if no input device is available or the configuration is unsupported;
	// such setup errors are fatal to session construction.
	Open(cfg StreamConfig, cb Callback) (Stream, error)
}

// Package audio holds the audio transport primitives shared by the voice
// pipeline: the Frame type produced by capture backends and a thread-safe
// FIFO queue connecting the capture callback to the background processing
// loop.
package audio

// Frame represents a single block of mono PCM samples flowing through the
// pipeline. Frames are the atomic unit of audio transport, produced by the
// capture callback and consumed immediately (voice activity detection) or
// appended to a buffer (standby accumulation, active-listening queue).
//
// Samples are normalized float32 values in [-1, 1]. A frame is ephemeral;
// consumers that hold on to sample data past the callback's lifetime must
// copy it.
type Frame struct {
	// Samples is the raw PCM data. Length is fixed per capture stream
	// (1024 samples per block by default).
	Samples []float32

	// SampleRate in Hz (16000 for the STT-optimised mono capture stream).
	SampleRate int
}

// Clone returns a deep copy of the frame. Use this before handing samples
// from a capture callback to any consumer that outlives the callback.
func (f Frame) Clone() Frame {
	cp := make([]float32, len(f.Samples))
	copy(cp, f.Samples)
	return Frame{Samples: cp, SampleRate: f.SampleRate}
}

// Package vad implements a lightweight energy-based voice activity detector.
//
// The detector computes the mean absolute amplitude of a sample block and
// classifies it as voiced when the energy strictly exceeds a threshold. It is
// a pure function of its input: no internal state, no I/O, no allocation.
// This keeps it cheap enough to run on every frame inside the audio capture
// callback without introducing backpressure.
package vad

const defaultThreshold = 0.01

// Detector classifies sample blocks as voiced or silent. Safe for concurrent
// use; Detector is read-only after construction.
type Detector struct {
	threshold float64
}

// New returns a Detector with the given energy threshold. A threshold of 0
// selects the default (0.01).
func New(threshold float64) *Detector {
	if threshold <= 0 {
		threshold = defaultThreshold
	}
	return &Detector{threshold: threshold}
}

// Detect reports whether the block contains voice activity: true iff the mean
// absolute amplitude strictly exceeds the configured threshold. An empty
// block is silent.
func (d *Detector) Detect(samples []float32) bool {
	return DetectAt(samples, d.threshold)
}

// Threshold returns the configured energy threshold.
func (d *Detector) Threshold() float64 {
	return d.threshold
}

// DetectAt reports whether the mean absolute amplitude of samples strictly
// exceeds threshold. Used directly by the wake-word energy gates, which apply
// stricter thresholds than the per-frame detector.
func DetectAt(samples []float32, threshold float64) bool {
	return Energy(samples) > threshold
}

// Energy returns the mean absolute amplitude of the block, 0 for an empty one.
func Energy(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		if s < 0 {
			sum -= float64(s)
		} else {
			sum += float64(s)
		}
	}
	return sum / float64(len(samples))
}

// Package portaudio implements capture.Provider using the PortAudio bindings.
// PortAudio is initialised once per Provider and terminated on Close.
package portaudio

import (
	"errors"
	"fmt"
	"sync"

	portaudiolib "github.com/gordonklaus/portaudio"

	"github.com/in2theCODE/MyCODEagent/pkg/audio"
	"github.com/in2theCODE/MyCODEagent/pkg/provider/capture"
)

const (
	defaultSampleRate = 16000
	defaultFrameSize  = 1024
)

// Compile-time assertion that Provider satisfies capture.Provider.
var _ capture.Provider = (*Provider)(nil)

// Provider implements capture.Provider backed by the default PortAudio input
// device.
type Provider struct {
	closeOnce sync.Once
}

// New initialises PortAudio and verifies that an input device exists.
// Returns an error if the audio subsystem cannot start or no input device is
// found; such errors are fatal to session construction.
func New() (*Provider, error) {
	if err := portaudiolib.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio: initialize: %w", err)
	}
	dev, err := portaudiolib.DefaultInputDevice()
	if err != nil {
		portaudiolib.Terminate()
		return nil, fmt.Errorf("portaudio: no input device found: %w", err)
	}
	if dev.MaxInputChannels < 1 {
		portaudiolib.Terminate()
		return nil, errors.New("portaudio: default device has no input channels")
	}
	return &Provider{}, nil
}

// Close terminates the PortAudio subsystem. Calling Close more than once is
// safe. All streams must be closed first.
func (p *Provider) Close() error {
	p.closeOnce.Do(func() {
		portaudiolib.Terminate()
	})
	return nil
}

// Open starts a mono capture stream on the default input device. cb is
// invoked once per FrameSize block on PortAudio's callback thread; the sample
// slice is reused between invocations.
func (p *Provider) Open(cfg capture.StreamConfig, cb capture.Callback) (capture.Stream, error) {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = defaultSampleRate
	}
	if cfg.FrameSize <= 0 {
		cfg.FrameSize = defaultFrameSize
	}

	st, err := portaudiolib.OpenDefaultStream(
		1, // mono input
		0, // no output
		float64(cfg.SampleRate),
		cfg.FrameSize,
		func(in []float32) {
			cb(audio.Frame{Samples: in, SampleRate: cfg.SampleRate})
		},
	)
	if err != nil {
		return nil, fmt.Errorf("portaudio: open stream: %w", err)
	}
	if err := st.Start(); err != nil {
		st.Close()
		return nil, fmt.Errorf("portaudio: start stream: %w", err)
	}

	return &stream{st: st}, nil
}

// stream wraps a live PortAudio stream.
type stream struct {
	st       *portaudiolib.Stream
	stopOnce sync.Once
	stopErr  error
}

// Stop halts capture. No callback invocations occur after Stop returns.
func (s *stream) Stop() error {
	s.stopOnce.Do(func() {
		s.stopErr = s.st.Stop()
	})
	return s.stopErr
}

// Close stops the stream and releases its resources.
func (s *stream) Close() error {
	if err := s.Stop(); err != nil {
		// Stop failures still allow Close to release the stream.
		s.st.Close()
		return err
	}
	return s.st.Close()
}

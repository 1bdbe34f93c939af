// Package mock provides test doubles for the capture package interfaces.
//
// Use Provider.Feed to push synthetic frames into the callback the session
// registered, simulating the audio hardware without a real device.
package mock

import (
	"sync"

	"github.com/in2theCODE/MyCODEagent/pkg/audio"
	"github.com/in2theCODE/MyCODEagent/pkg/provider/capture"
)

// Provider is a mock implementation of capture.Provider.
type Provider struct {
	mu sync.Mutex

	// OpenErr, if non-nil, is returned as the error from Open.
	OpenErr error

	// OpenCalls records the StreamConfig of every Open call.
	OpenCalls []capture.StreamConfig

	cb      capture.Callback
	stream  *Stream
	stopped bool
}

// Open records the call and captures cb for later Feed invocations.
func (p *Provider) Open(cfg capture.StreamConfig, cb capture.Callback) (capture.Stream, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.OpenCalls = append(p.OpenCalls, cfg)
	if p.OpenErr != nil {
		return nil, p.OpenErr
	}
	p.cb = cb
	p.stream = &Stream{provider: p}
	return p.stream, nil
}

// Feed delivers a frame to the registered callback, mimicking a hardware
// callback invocation. Frames fed after Stop are dropped, matching the
// capture.Stream contract.
func (p *Provider) Feed(frame audio.Frame) {
	p.mu.Lock()
	cb, stopped := p.cb, p.stopped
	p.mu.Unlock()
	if cb == nil || stopped {
		return
	}
	cb(frame)
}

// Stream is the mock capture.Stream returned by Provider.Open.
type Stream struct {
	provider *Provider

	mu         sync.Mutex
	StopCalls  int
	CloseCalls int
}

// Stop marks the stream stopped; subsequent Feed calls are dropped.
func (s *Stream) Stop() error {
	s.mu.Lock()
	s.StopCalls++
	s.mu.Unlock()

	s.provider.mu.Lock()
	s.provider.stopped = true
	s.provider.mu.Unlock()
	return nil
}

// Close implies Stop.
func (s *Stream) Close() error {
	s.mu.Lock()
	s.CloseCalls++
	s.mu.Unlock()
	return s.Stop()
}

// Ensure the mocks implement the capture interfaces at compile time.
var (
	_ capture.Provider = (*Provider)(nil)
	_ capture.Stream   = (*Stream)(nil)
)

package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/in2theCODE/MyCODEagent/pkg/provider/capture"
	"github.com/in2theCODE/MyCODEagent/pkg/provider/stt"
	"github.com/in2theCODE/MyCODEagent/pkg/provider/tts"
)

// ErrProviderNotRegistered is returned by Create* methods when no factory has
// been registered under the requested provider name.
var ErrProviderNotRegistered = errors.New("config: provider not registered")

// Registry maps provider names to their constructor functions for each
// provider type. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	stt     map[string]func(ProviderEntry) (stt.Transcriber, error)
	tts     map[string]func(ProviderEntry) (tts.Speaker, error)
	capture map[string]func(ProviderEntry) (capture.Provider, error)
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry() *Registry {
	return &Registry{
		stt:     make(map[string]func(ProviderEntry) (stt.Transcriber, error)),
		tts:     make(map[string]func(ProviderEntry) (tts.Speaker, error)),
		capture: make(map[string]func(ProviderEntry) (capture.Provider, error)),
	}
}

// RegisterSTT registers a transcriber factory under name.
// Subsequent calls with the same name overwrite the previous registration.
func (r *Registry) RegisterSTT(name string, factory func(ProviderEntry) (stt.Transcriber, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stt[name] = factory
}

// RegisterTTS registers a speaker factory under name.
func (r *Registry) RegisterTTS(name string, factory func(ProviderEntry) (tts.Speaker, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tts[name] = factory
}

// RegisterCapture registers an audio capture factory under name.
func (r *Registry) RegisterCapture(name string, factory func(ProviderEntry) (capture.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.capture[name] = factory
}

// CreateSTT instantiates a transcriber using the factory registered under
// entry.Name. Returns [ErrProviderNotRegistered] if no factory has been
// registered for that name.
func (r *Registry) CreateSTT(entry ProviderEntry) (stt.Transcriber, error) {
	r.mu.RLock()
	factory, ok := r.stt[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: stt/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}

// CreateTTS instantiates a speaker using the factory registered under entry.Name.
func (r *Registry) CreateTTS(entry ProviderEntry) (tts.Speaker, error) {
	r.mu.RLock()
	factory, ok := r.tts[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: tts/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}

// CreateCapture instantiates an audio capture provider using the factory
// registered under entry.Name.
func (r *Registry) CreateCapture(entry ProviderEntry) (capture.Provider, error) {
	r.mu.RLock()
	factory, ok := r.capture[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: capture/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}

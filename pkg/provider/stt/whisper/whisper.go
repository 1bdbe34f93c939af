// Package whisper implements stt.Transcriber backed by the whisper.cpp CGO
// bindings. The whisper.cpp static library (libwhisper.a) and headers
// (whisper.h) must be available at link time via LIBRARY_PATH and
// C_INCLUDE_PATH environment variables.
//
// The model is loaded once at construction and shared across all Transcribe
// calls; each call creates its own whisper context, so concurrent callers do
// not interfere.
package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/in2theCODE/MyCODEagent/pkg/provider/stt"
)

const defaultLanguage = "en"

// Compile-time assertion that Transcriber satisfies stt.Transcriber.
var _ stt.Transcriber = (*Transcriber)(nil)

// Option is a functional option for configuring a Transcriber.
type Option func(*Transcriber)

// WithLanguage sets the BCP-47 language code for transcription
// (e.g., "en", "de", "fr"). Defaults to "en".
func WithLanguage(lang string) Option {
	return func(t *Transcriber) { t.language = lang }
}

// Transcriber implements stt.Transcriber using whisper.cpp Go bindings (CGO),
// eliminating network overhead entirely.
type Transcriber struct {
	model    whisperlib.Model
	language string

	// closeOnce guards model release.
	closeOnce sync.Once
}

// New creates a Transcriber that loads the whisper.cpp model from the given
// file path. The caller must call Close when the transcriber is no longer
// needed.
func New(modelPath string, opts ...Option) (*Transcriber, error) {
	if modelPath == "" {
		return nil, errors.New("whisper: modelPath must not be empty")
	}
	model, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("whisper: load model %q: %w", modelPath, err)
	}

	t := &Transcriber{
		model:    model,
		language: defaultLanguage,
	}
	for _, o := range opts {
		o(t)
	}
	return t, nil
}

// Close releases the whisper model. Calling Close more than once is safe.
func (t *Transcriber) Close() error {
	var err error
	t.closeOnce.Do(func() {
		if t.model != nil {
			err = t.model.Close()
		}
	})
	return err
}

// Transcribe runs whisper.cpp inference over the sample buffer and returns the
// recognised segments in order. Each call creates a fresh whisper context from
// the shared model; the model itself is safe to share across goroutines.
func (t *Transcriber) Transcribe(ctx context.Context, samples []float32) ([]stt.Segment, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("whisper: context already cancelled: %w", err)
	}
	if len(samples) == 0 {
		return nil, nil
	}

	wctx, err := t.model.NewContext()
	if err != nil {
		return nil, fmt.Errorf("whisper: create context: %w", err)
	}

	if err := wctx.SetLanguage(t.language); err != nil {
		slog.Warn("whisper: failed to set language, using default",
			"language", t.language, "error", err)
	}

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return nil, fmt.Errorf("whisper: process audio: %w", err)
	}

	var segments []stt.Segment
	for {
		seg, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("whisper: read segment: %w", err)
		}
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		segments = append(segments, stt.Segment{Text: text})
	}

	return segments, nil
}

package wake

import (
	"context"
	"errors"
	"testing"

	"github.com/in2theCODE/MyCODEagent/pkg/provider/stt"
	sttmock "github.com/in2theCODE/MyCODEagent/pkg/provider/stt/mock"
)

// loudFrame returns n samples at a constant amplitude, loud enough to pass
// both energy gates.
func loudFrame(n int, v float32) []float32 {
	f := make([]float32, n)
	for i := range f {
		f[i] = v
	}
	return f
}

func TestCheck_EnergyGatesShortCircuitTranscription(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		amplitude float32
	}{
		{"silence fails coarse gate", 0.0},
		{"quiet fails coarse gate", 0.01},
		{"mid fails strict gate", 0.03},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			transcriber := &sttmock.Transcriber{
				Segments: []stt.Segment{{Text: "hey aiden"}},
			}
			d := New(Config{Phrase: "hey aiden"}, transcriber, nil)

			if d.Check(context.Background(), loudFrame(1024, tt.amplitude)) {
				t.Error("expected check to fail at an energy gate")
			}
			if transcriber.CallCount() != 0 {
				t.Errorf("transcription invoked %d times despite failed energy gate",
					transcriber.CallCount())
			}
		})
	}
}

func TestCheck_MatchesConfiguredPhrase(t *testing.T) {
	t.Parallel()

	transcriber := &sttmock.Transcriber{
		Segments: []stt.Segment{{Text: "Computer, what time is it"}},
	}

	woke := false
	d := New(Config{Phrase: "computer"}, transcriber, func(context.Context) {
		woke = true
	})

	if !d.Check(context.Background(), loudFrame(1024, 0.2)) {
		t.Fatal("expected wake word to be detected")
	}
	if !woke {
		t.Error("expected activation callback to fire on success")
	}
	if transcriber.CallCount() != 1 {
		t.Errorf("transcription invoked %d times, want 1", transcriber.CallCount())
	}
}

func TestCheck_FuzzyTokenMatch(t *testing.T) {
	t.Parallel()

	// "assistants" is one edit away from "assistant" (ratio 0.9 > 0.85), so
	// a slightly mangled transcription still wakes the session.
	transcriber := &sttmock.Transcriber{
		Segments: []stt.Segment{{Text: "assistants"}},
	}
	d := New(Config{Phrase: "assistant"}, transcriber, nil)

	if !d.Check(context.Background(), loudFrame(1024, 0.2)) {
		t.Error("expected near-miss transcription to be matched")
	}
}

func TestCheck_NoMatchBelowThreshold(t *testing.T) {
	t.Parallel()

	transcriber := &sttmock.Transcriber{
		Segments: []stt.Segment{{Text: "completely unrelated speech"}},
	}

	woke := false
	d := New(Config{Phrase: "hey aiden"}, transcriber, func(context.Context) {
		woke = true
	})

	if d.Check(context.Background(), loudFrame(1024, 0.2)) {
		t.Error("expected no detection for unrelated speech")
	}
	if woke {
		t.Error("activation callback fired without a match")
	}
}

func TestCheck_TranscriptionErrorIsNegative(t *testing.T) {
	t.Parallel()

	transcriber := &sttmock.Transcriber{Err: errors.New("model crashed")}
	d := New(Config{Phrase: "hey aiden"}, transcriber, func(context.Context) {
		t.Error("activation callback must not fire on transcription error")
	})

	if d.Check(context.Background(), loudFrame(1024, 0.2)) {
		t.Error("expected transcription error to yield a negative result")
	}
}

func TestCheck_EmptyTranscriptIsNegative(t *testing.T) {
	t.Parallel()

	transcriber := &sttmock.Transcriber{}
	d := New(Config{Phrase: "hey aiden"}, transcriber, nil)

	if d.Check(context.Background(), loudFrame(1024, 0.2)) {
		t.Error("expected empty transcript to yield a negative result")
	}
}

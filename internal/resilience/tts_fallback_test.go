package resilience

import (
	"context"
	"errors"
	"testing"

	ttsmock "github.com/in2theCODE/MyCODEagent/pkg/provider/tts/mock"
)

func TestTTSFallback_PrimarySucceeds(t *testing.T) {
	t.Parallel()

	primary := &ttsmock.Speaker{}
	secondary := &ttsmock.Speaker{}

	f := NewTTSFallback(primary, "elevenlabs", fallbackTestConfig())
	f.AddFallback("console", secondary)

	if err := f.Speak(context.Background(), "hello there"); err != nil {
		t.Fatalf("Speak: %v", err)
	}
	if primary.SpokenCount() != 1 {
		t.Errorf("primary spoke %d times, want 1", primary.SpokenCount())
	}
	if secondary.SpokenCount() != 0 {
		t.Error("fallback should stay silent when the primary succeeds")
	}
}

func TestTTSFallback_FailsOverToConsole(t *testing.T) {
	t.Parallel()

	primary := &ttsmock.Speaker{Err: errors.New("api unreachable")}
	secondary := &ttsmock.Speaker{}

	f := NewTTSFallback(primary, "elevenlabs", fallbackTestConfig())
	f.AddFallback("console", secondary)

	if err := f.Speak(context.Background(), "hello there"); err != nil {
		t.Fatalf("Speak: %v", err)
	}
	spoken := secondary.Spoken()
	if len(spoken) != 1 || spoken[0] != "hello there" {
		t.Fatalf("fallback utterances = %v", spoken)
	}
}

func TestTTSFallback_AllFail(t *testing.T) {
	t.Parallel()

	primary := &ttsmock.Speaker{Err: errors.New("down")}
	secondary := &ttsmock.Speaker{Err: errors.New("also down")}

	f := NewTTSFallback(primary, "elevenlabs", fallbackTestConfig())
	f.AddFallback("console", secondary)

	if err := f.Speak(context.Background(), "hello"); !errors.Is(err, ErrAllFailed) {
		t.Fatalf("err = %v, want ErrAllFailed", err)
	}
}

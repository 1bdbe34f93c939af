package config_test

import (
	"errors"
	"testing"

	"github.com/in2theCODE/MyCODEagent/internal/config"
	"github.com/in2theCODE/MyCODEagent/pkg/provider/stt"
	sttmock "github.com/in2theCODE/MyCODEagent/pkg/provider/stt/mock"
	"github.com/in2theCODE/MyCODEagent/pkg/provider/tts"
	ttsmock "github.com/in2theCODE/MyCODEagent/pkg/provider/tts/mock"
)

func TestRegistry_CreateSTT(t *testing.T) {
	t.Parallel()

	reg := config.NewRegistry()
	created := 0
	reg.RegisterSTT("whisper", func(entry config.ProviderEntry) (stt.Transcriber, error) {
		created++
		if entry.Model != "models/base.bin" {
			t.Errorf("entry.Model = %q", entry.Model)
		}
		return &sttmock.Transcriber{}, nil
	})

	got, err := reg.CreateSTT(config.ProviderEntry{Name: "whisper", Model: "models/base.bin"})
	if err != nil {
		t.Fatalf("CreateSTT: %v", err)
	}
	if got == nil {
		t.Fatal("CreateSTT returned nil provider")
	}
	if created != 1 {
		t.Errorf("factory invoked %d times, want 1", created)
	}
}

func TestRegistry_CreateUnregistered(t *testing.T) {
	t.Parallel()

	reg := config.NewRegistry()

	if _, err := reg.CreateSTT(config.ProviderEntry{Name: "nope"}); !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("CreateSTT err = %v, want ErrProviderNotRegistered", err)
	}
	if _, err := reg.CreateTTS(config.ProviderEntry{Name: "nope"}); !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("CreateTTS err = %v, want ErrProviderNotRegistered", err)
	}
	if _, err := reg.CreateCapture(config.ProviderEntry{Name: "nope"}); !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("CreateCapture err = %v, want ErrProviderNotRegistered", err)
	}
}

func TestRegistry_LastRegistrationWins(t *testing.T) {
	t.Parallel()

	reg := config.NewRegistry()
	first := &ttsmock.Speaker{}
	second := &ttsmock.Speaker{}
	reg.RegisterTTS("console", func(config.ProviderEntry) (tts.Speaker, error) { return first, nil })
	reg.RegisterTTS("console", func(config.ProviderEntry) (tts.Speaker, error) { return second, nil })

	got, err := reg.CreateTTS(config.ProviderEntry{Name: "console"})
	if err != nil {
		t.Fatalf("CreateTTS: %v", err)
	}
	if got != second {
		t.Error("expected the later registration to win")
	}
}

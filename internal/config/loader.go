package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"stt":     {"whisper"},
	"tts":     {"elevenlabs", "console"},
	"capture": {"portaudio"},
}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader] and
// [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// ${VAR} references are expanded from the environment before decoding, so
// secrets can live in the environment (or a .env file) instead of the config.
func LoadFromReader(r io.Reader) (*Config, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}
	expanded := os.ExpandEnv(string(raw))

	cfg := &Config{}
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// Voice
	v := cfg.Voice
	if v.SilenceThreshold < 0 {
		errs = append(errs, fmt.Errorf("voice.silence_threshold %.4f must not be negative", v.SilenceThreshold))
	}
	if v.WakeCoarseThreshold < 0 || v.WakeStrictThreshold < 0 {
		errs = append(errs, errors.New("voice wake energy thresholds must not be negative"))
	}
	if v.WakeCoarseThreshold > 0 && v.WakeStrictThreshold > 0 && v.WakeStrictThreshold <= v.WakeCoarseThreshold {
		errs = append(errs, fmt.Errorf("voice.wake_strict_threshold %.4f must exceed voice.wake_coarse_threshold %.4f", v.WakeStrictThreshold, v.WakeCoarseThreshold))
	}
	if v.WakeMatchThreshold < 0 || v.WakeMatchThreshold > 1 {
		errs = append(errs, fmt.Errorf("voice.wake_match_threshold %.4f is out of range [0, 1]", v.WakeMatchThreshold))
	}
	if v.SilenceCycles < 0 {
		errs = append(errs, fmt.Errorf("voice.silence_cycles %d must not be negative", v.SilenceCycles))
	}
	if v.ConfirmationTimeout < 0 {
		errs = append(errs, fmt.Errorf("voice.confirmation_timeout %s must not be negative", v.ConfirmationTimeout))
	}
	if v.SampleRate < 0 || v.FrameSize < 0 {
		errs = append(errs, errors.New("voice.sample_rate and voice.frame_size must not be negative"))
	}

	// Provider name validation; warn for unknown provider names.
	validateProviderName("stt", cfg.Providers.STT.Name)
	validateProviderName("tts", cfg.Providers.TTS.Name)
	validateProviderName("capture", cfg.Providers.Capture.Name)

	// Provider availability warnings
	if cfg.Providers.STT.Name == "" {
		slog.Warn("providers.stt is not configured; wake-word detection and command transcription will be unavailable")
	}
	if cfg.Providers.STT.Name == "whisper" && cfg.Providers.STT.Model == "" {
		errs = append(errs, errors.New("providers.stt.model is required for the whisper provider (path to a ggml model file)"))
	}
	if cfg.Providers.TTS.Name == "elevenlabs" && cfg.Providers.TTS.APIKey == "" {
		slog.Warn("providers.tts.api_key is empty; ElevenLabs requests will be rejected unless the key is injected via environment")
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name, may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}

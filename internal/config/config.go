// Package config provides the configuration schema, loader, provider
// registry, and file watcher for the Aiden voice assistant.
package config

import "time"

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for Aiden.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Voice     VoiceConfig     `yaml:"voice"`
	Providers ProvidersConfig `yaml:"providers"`
}

// ServerConfig holds logging and telemetry settings.
type ServerConfig struct {
	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// MetricsAddr is the TCP address of the Prometheus scrape endpoint
	// (e.g., ":9090"). Empty disables the metrics server.
	MetricsAddr string `yaml:"metrics_addr"`
}

// VoiceConfig tunes the wake-word gate and the active-listening session.
type VoiceConfig struct {
	// WakeWord is the activation phrase (e.g., "aiden").
	WakeWord string `yaml:"wake_word"`

	// SilenceThreshold is the mean-absolute-energy level separating speech
	// from silence. Default: 0.01.
	SilenceThreshold float64 `yaml:"silence_threshold"`

	// WakeCoarseThreshold and WakeStrictThreshold are the two energy gates
	// applied to standby audio before transcription. Defaults: 0.02 and 0.05.
	WakeCoarseThreshold float64 `yaml:"wake_coarse_threshold"`
	WakeStrictThreshold float64 `yaml:"wake_strict_threshold"`

	// WakeMatchThreshold is the minimum fuzzy similarity between a wake
	// phrase and a transcript token. Default: 0.85.
	WakeMatchThreshold float64 `yaml:"wake_match_threshold"`

	// SilenceCycles is the consecutive-silent-frame count after which an
	// active session returns to standby. Default: 50.
	SilenceCycles int `yaml:"silence_cycles"`

	// ConfirmationTimeout bounds how long a pending confirmation waits for a
	// spoken answer. Default: 5s.
	ConfirmationTimeout time.Duration `yaml:"confirmation_timeout"`

	// SampleRate and FrameSize describe the capture stream.
	// Defaults: 16000 and 1024.
	SampleRate int `yaml:"sample_rate"`
	FrameSize  int `yaml:"frame_size"`

	// CommandsFile is the path to the YAML voice-command template.
	CommandsFile string `yaml:"commands_file"`
}

// ProvidersConfig declares which provider implementation to use for each
// pipeline stage. Each field selects a named provider registered in the
// [Registry].
type ProvidersConfig struct {
	STT     ProviderEntry `yaml:"stt"`
	TTS     ProviderEntry `yaml:"tts"`
	Capture ProviderEntry `yaml:"capture"`
}

// ProviderEntry is the common configuration block shared by all provider
// types. The Name field is used to look up the constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation
	// (e.g., "whisper", "elevenlabs", "portaudio").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	// Leave empty to use the provider's built-in default.
	BaseURL string `yaml:"base_url"`

	// Model selects a model within the provider. For whisper this is the
	// path to the ggml model file.
	Model string `yaml:"model"`

	// VoiceID is the provider-specific voice identifier for TTS providers.
	VoiceID string `yaml:"voice_id"`

	// Options holds provider-specific configuration values not covered by
	// the standard fields above. Values may be strings, numbers, booleans,
	// or nested maps.
	Options map[string]any `yaml:"options"`
}

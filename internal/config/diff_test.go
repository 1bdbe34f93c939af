package config_test

import (
	"testing"

	"github.com/in2theCODE/MyCODEagent/internal/config"
)

func TestDiff(t *testing.T) {
	t.Parallel()

	base := func() *config.Config {
		return &config.Config{
			Server: config.ServerConfig{LogLevel: config.LogInfo},
			Voice: config.VoiceConfig{
				SilenceThreshold: 0.01,
				SilenceCycles:    50,
				CommandsFile:     "templates/voice_commands.yml",
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   config.ConfigDiff
	}{
		{
			name:   "no changes",
			mutate: func(*config.Config) {},
			want:   config.ConfigDiff{},
		},
		{
			name:   "log level",
			mutate: func(c *config.Config) { c.Server.LogLevel = config.LogDebug },
			want:   config.ConfigDiff{LogLevelChanged: true, NewLogLevel: config.LogDebug},
		},
		{
			name:   "commands file",
			mutate: func(c *config.Config) { c.Voice.CommandsFile = "templates/extra.yml" },
			want:   config.ConfigDiff{CommandsFileChanged: true, NewCommandsFile: "templates/extra.yml"},
		},
		{
			name:   "silence threshold",
			mutate: func(c *config.Config) { c.Voice.SilenceThreshold = 0.02 },
			want:   config.ConfigDiff{VoiceTuningChanged: true},
		},
		{
			name:   "silence cycles",
			mutate: func(c *config.Config) { c.Voice.SilenceCycles = 75 },
			want:   config.ConfigDiff{VoiceTuningChanged: true},
		},
		{
			name: "metrics addr ignored",
			mutate: func(c *config.Config) {
				c.Server.MetricsAddr = ":9999"
			},
			want: config.ConfigDiff{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			old := base()
			updated := base()
			tt.mutate(updated)

			if got := config.Diff(old, updated); got != tt.want {
				t.Errorf("Diff() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

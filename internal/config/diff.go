package config

// ConfigDiff describes what changed between two configs.
// Only fields that can be safely hot-reloaded are tracked; provider and
// audio-pipeline changes require a restart and are deliberately ignored.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// CommandsFileChanged is true when the voice-command template path
	// changed; the command table can be reloaded without restarting capture.
	CommandsFileChanged bool
	NewCommandsFile     string

	// VoiceTuningChanged is true when any wake or silence threshold changed.
	// Applied on the next standby cycle.
	VoiceTuningChanged bool
}

// Diff compares old and new configs and returns what changed.
// Only tracks changes that are safe to apply without restart.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	if old.Voice.CommandsFile != new.Voice.CommandsFile {
		d.CommandsFileChanged = true
		d.NewCommandsFile = new.Voice.CommandsFile
	}

	if old.Voice.SilenceThreshold != new.Voice.SilenceThreshold ||
		old.Voice.WakeCoarseThreshold != new.Voice.WakeCoarseThreshold ||
		old.Voice.WakeStrictThreshold != new.Voice.WakeStrictThreshold ||
		old.Voice.WakeMatchThreshold != new.Voice.WakeMatchThreshold ||
		old.Voice.SilenceCycles != new.Voice.SilenceCycles {
		d.VoiceTuningChanged = true
	}

	return d
}

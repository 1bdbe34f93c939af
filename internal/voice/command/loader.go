package command

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// parameterSpec mirrors one parameter record in the YAML template.
type parameterSpec struct {
	Name            string   `yaml:"name"`
	Type            string   `yaml:"type"`
	Required        bool     `yaml:"required"`
	VoicePrompt     string   `yaml:"voice_prompt"`
	ValidationRegex string   `yaml:"validation_regex"`
	Options         []string `yaml:"options"`
}

// commandSpec mirrors one command record in the YAML template.
type commandSpec struct {
	Name                 string          `yaml:"name"`
	VoiceTriggers        []string        `yaml:"voice_triggers"`
	Description          string          `yaml:"description"`
	Parameters           []parameterSpec `yaml:"parameters"`
	ConfirmationRequired bool            `yaml:"confirmation_required"`
	SuccessMessage       string          `yaml:"success_message"`
	ErrorMessage         string          `yaml:"error_message"`
	ConfirmationPrompt   string          `yaml:"confirmation_prompt"`
}

// commandFile is the top-level YAML document. Records are kept as raw nodes
// so that one malformed record does not abort the whole load.
type commandFile struct {
	VoiceCommands []yaml.Node `yaml:"voice_commands"`
}

// Load reads the voice-command template file at path and returns the command
// table plus the number of records that were skipped as malformed. A missing
// file fails fast; a session without its command table must not start.
func Load(path string) (*Table, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("command: open template %q: %w", path, err)
	}
	defer f.Close()

	table, skipped, err := LoadFromReader(f)
	if err != nil {
		return nil, 0, fmt.Errorf("command: parse template %q: %w", path, err)
	}
	return table, skipped, nil
}

// LoadFromReader decodes a voice-command YAML document from r. Malformed
// individual records (missing name, empty trigger list, missing success
// message, uncompilable validation regex, or a key collision with an earlier
// command) are skipped with a warning; the skipped count is surfaced so
// callers can report partial loads instead of swallowing them silently.
func LoadFromReader(r io.Reader) (*Table, int, error) {
	var file commandFile
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&file); err != nil {
		return nil, 0, fmt.Errorf("decode yaml: %w", err)
	}

	var (
		cmds    []*Command
		skipped int
		keys    = make(map[string]string) // lower-cased key → owning command name
	)

	for i, node := range file.VoiceCommands {
		var spec commandSpec
		if err := node.Decode(&spec); err != nil {
			slog.Warn("command: skipping malformed record", "index", i, "error", err)
			skipped++
			continue
		}

		cmd, err := buildCommand(spec)
		if err != nil {
			slog.Warn("command: skipping invalid record", "index", i, "name", spec.Name, "error", err)
			skipped++
			continue
		}

		if owner := claimKeys(keys, cmd); owner != "" {
			slog.Warn("command: skipping record with colliding key",
				"index", i, "name", cmd.Name, "collides_with", owner)
			skipped++
			continue
		}

		cmds = append(cmds, cmd)
	}

	table, err := NewTable(cmds)
	if err != nil {
		// Collisions were filtered above; a failure here is a programming error.
		return nil, 0, err
	}
	if skipped > 0 {
		slog.Warn("command: template loaded with skipped records",
			"loaded", len(cmds), "skipped", skipped)
	}
	return table, skipped, nil
}

// buildCommand validates a decoded record and converts it into a Command,
// compiling each validation regex anchored at the start of the value.
func buildCommand(spec commandSpec) (*Command, error) {
	if strings.TrimSpace(spec.Name) == "" {
		return nil, fmt.Errorf("name is required")
	}
	if len(spec.VoiceTriggers) == 0 {
		return nil, fmt.Errorf("voice_triggers must not be empty")
	}
	if spec.SuccessMessage == "" {
		return nil, fmt.Errorf("success_message is required")
	}

	params := make([]Parameter, 0, len(spec.Parameters))
	for _, ps := range spec.Parameters {
		if strings.TrimSpace(ps.Name) == "" {
			return nil, fmt.Errorf("parameter name is required")
		}
		var pattern *regexp.Regexp
		if ps.ValidationRegex != "" {
			re, err := regexp.Compile("^(?:" + ps.ValidationRegex + ")")
			if err != nil {
				return nil, fmt.Errorf("parameter %q: invalid validation_regex: %w", ps.Name, err)
			}
			pattern = re
		}
		params = append(params, Parameter{
			Name:     ps.Name,
			Type:     ps.Type,
			Required: ps.Required,
			Prompt:   ps.VoicePrompt,
			Pattern:  pattern,
			Options:  ps.Options,
		})
	}

	return &Command{
		Name:                 spec.Name,
		Triggers:             spec.VoiceTriggers,
		Description:          spec.Description,
		Parameters:           params,
		ConfirmationRequired: spec.ConfirmationRequired,
		SuccessMessage:       spec.SuccessMessage,
		ErrorMessage:         spec.ErrorMessage,
		ConfirmationPrompt:   spec.ConfirmationPrompt,
	}, nil
}

// claimKeys reserves the command's name and trigger keys in keys. On a
// collision with a different command it returns the owning command's name
// without claiming anything.
func claimKeys(keys map[string]string, cmd *Command) (owner string) {
	candidate := []string{strings.ToLower(cmd.Name)}
	for _, trigger := range cmd.Triggers {
		candidate = append(candidate, strings.ToLower(trigger))
	}
	for _, key := range candidate {
		if own, ok := keys[key]; ok && own != cmd.Name {
			return own
		}
	}
	for _, key := range candidate {
		keys[key] = cmd.Name
	}
	return ""
}

// Package command implements the voice-command model: the command table
// loaded from YAML templates, fuzzy matching with a rolling history cache,
// parameter extraction and validation, and execution against the command
// registry with confirmation and bounded-retry semantics.
package command

import (
	"fmt"
	"regexp"
	"strings"
)

// Parameter describes a single named parameter of a voice command.
// A parameter with neither Options nor Pattern accepts any non-empty string.
type Parameter struct {
	// Name is the parameter identifier, also the token searched for during
	// extraction.
	Name string

	// Type is the declared value type (informational; e.g., "string", "int").
	Type string

	// Required marks parameters that must be present for execution.
	Required bool

	// Prompt is the spoken prompt used when asking the user for this value.
	Prompt string

	// Pattern, when non-nil, is the validation regex anchored at the start of
	// the value.
	Pattern *regexp.Regexp

	// Options, when non-empty, is the enumerated set of accepted values,
	// matched case-insensitively.
	Options []string
}

// Command is an immutable voice-command definition. Commands are looked up by
// exact name or by any trigger phrase; both share one case-insensitive keyed
// mapping (see Table).
type Command struct {
	// Name uniquely identifies the command in the registry.
	Name string

	// Triggers are the spoken phrases that resolve to this command. Never empty.
	Triggers []string

	// Description is a human-readable summary.
	Description string

	// Parameters are the declared parameters in order.
	Parameters []Parameter

	// ConfirmationRequired gates execution behind an explicit affirmative
	// response.
	ConfirmationRequired bool

	// SuccessMessage is spoken after successful execution. Supports {param}
	// interpolation.
	SuccessMessage string

	// ErrorMessage, when non-empty, is spoken after failed execution.
	// Supports {param} interpolation.
	ErrorMessage string

	// ConfirmationPrompt, when non-empty, overrides the default confirmation
	// question. Supports {param} interpolation.
	ConfirmationPrompt string
}

// Table is the combined name/trigger lookup structure. Both command names and
// trigger phrases live in one case-insensitive keyed mapping; the invariant
// that no trigger phrase collides with another command's name is validated at
// construction. Commands iterate in insertion order, giving the fuzzy scanner
// a deterministic tie-break (first command at the maximum score wins).
//
// Table is immutable after construction and safe for concurrent use.
type Table struct {
	byKey   map[string]*Command
	ordered []*Command
}

// NewTable builds a Table from cmds, indexing each command under its
// lower-cased name and every lower-cased trigger phrase. Returns an error on
// any cross-command key collision.
func NewTable(cmds []*Command) (*Table, error) {
	t := &Table{
		byKey:   make(map[string]*Command, len(cmds)*2),
		ordered: make([]*Command, 0, len(cmds)),
	}
	for _, cmd := range cmds {
		name := strings.ToLower(cmd.Name)
		if prev, ok := t.byKey[name]; ok && prev != cmd {
			return nil, fmt.Errorf("command: name %q collides with command %q", cmd.Name, prev.Name)
		}
		t.byKey[name] = cmd
		for _, trigger := range cmd.Triggers {
			key := strings.ToLower(trigger)
			if prev, ok := t.byKey[key]; ok && prev != cmd {
				return nil, fmt.Errorf("command: trigger %q of command %q collides with command %q",
					trigger, cmd.Name, prev.Name)
			}
			t.byKey[key] = cmd
		}
		t.ordered = append(t.ordered, cmd)
	}
	return t, nil
}

// Lookup returns the command registered under key (a name or trigger phrase),
// matched case-insensitively.
func (t *Table) Lookup(key string) (*Command, bool) {
	cmd, ok := t.byKey[strings.ToLower(key)]
	return cmd, ok
}

// Commands returns the commands in insertion order. The returned slice must
// not be modified.
func (t *Table) Commands() []*Command {
	return t.ordered
}

// Len returns the number of distinct commands in the table.
func (t *Table) Len() int {
	return len(t.ordered)
}

// placeholderRe matches {param} interpolation markers in message templates.
var placeholderRe = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// FormatMessage interpolates parameter values into a message template.
// If the template references a parameter that is not present in params, the
// template is returned unchanged rather than partially filled.
func FormatMessage(message string, params map[string]string) string {
	complete := true
	out := placeholderRe.ReplaceAllStringFunc(message, func(m string) string {
		name := m[1 : len(m)-1]
		if v, ok := params[name]; ok {
			return v
		}
		complete = false
		return m
	})
	if !complete {
		return message
	}
	return out
}

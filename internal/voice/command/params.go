package command

import "strings"

// Extract pulls parameter values out of a free-text utterance using a
// positional-token heuristic: when a parameter's name appears as a token in
// the lower-cased text, the next whitespace-delimited token becomes its value.
//
// This is deliberately not NLP-grade (multi-word values break it) but it
// matches the spoken command grammar the templates are written for
// (e.g., "create task priority high").
func Extract(cmd *Command, text string) map[string]string {
	tokens := strings.Fields(strings.ToLower(text))
	params := make(map[string]string, len(cmd.Parameters))
	for _, p := range cmd.Parameters {
		name := strings.ToLower(p.Name)
		for i, token := range tokens {
			if token != name {
				continue
			}
			if i+1 < len(tokens) {
				params[p.Name] = tokens[i+1]
			}
			break
		}
	}
	return params
}

// Validate reports whether value is acceptable for p. A value fails when a
// validation pattern is present and does not match anchored at the start, or
// when an option set is present and the value is not a case-insensitive
// member. Values are compared as spoken, with no implicit trimming, so
// "Admin " does not match the option "admin". A parameter with neither
// constraint accepts any non-empty value.
func Validate(p Parameter, value string) bool {
	if p.Pattern != nil && !p.Pattern.MatchString(value) {
		return false
	}
	if len(p.Options) > 0 {
		lowered := strings.ToLower(value)
		for _, opt := range p.Options {
			if lowered == strings.ToLower(opt) {
				return true
			}
		}
		return false
	}
	if p.Pattern == nil {
		return value != ""
	}
	return true
}

package command

import (
	"log/slog"
	"strings"

	"github.com/in2theCODE/MyCODEagent/internal/voice/fuzzy"
)

const (
	// historyThreshold is the similarity above which a recent successful
	// input short-circuits the table scan.
	historyThreshold = 0.9

	// matchThreshold is the minimum confidence for a fuzzy trigger match.
	// A best score at or below this value resolves to no command.
	matchThreshold = 0.7
)

// Matcher resolves a transcribed utterance to a command. Resolution order:
//
//  1. History fast path: the last 5 successful entries, newest first; a
//     recorded input with similarity above 0.9 resolves immediately.
//  2. Exact case-insensitive lookup against the combined name/trigger table.
//  3. Fuzzy scan of every trigger phrase of every command in insertion
//     order; the maximum score wins when strictly above 0.7.
//
// Every outcome, including a miss, is appended to the history ring.
//
// Matcher is safe for concurrent use, though the session invokes it only from
// the background processing loop.
type Matcher struct {
	table   *Table
	history *History

	// scan performs the full trigger-table scan. Overridable in tests to
	// verify the history fast path bypasses it.
	scan func(text string) (*Command, float64)
}

// NewMatcher creates a Matcher over table recording outcomes into history.
func NewMatcher(table *Table, history *History) *Matcher {
	m := &Matcher{table: table, history: history}
	m.scan = m.fullScan
	return m
}

// Find resolves text to a command, or reports false when nothing matches with
// sufficient confidence.
func (m *Matcher) Find(text string) (*Command, bool) {
	text = strings.ToLower(strings.TrimSpace(text))

	// 1. History fast path.
	for _, entry := range m.history.RecentSuccessful(5) {
		if entry.Command == "" {
			continue
		}
		if fuzzy.Ratio(text, entry.Input) > historyThreshold {
			if cmd, ok := m.table.Lookup(entry.Command); ok {
				slog.Debug("matcher: history fast path hit",
					"input", text, "command", cmd.Name)
				m.history.Add(text, cmd.Name, true)
				return cmd, true
			}
		}
	}

	// 2. Exact name/trigger lookup.
	if cmd, ok := m.table.Lookup(text); ok {
		m.history.Add(text, cmd.Name, true)
		return cmd, true
	}

	// 3. Fuzzy trigger scan.
	cmd, score := m.scan(text)
	if cmd != nil && score > matchThreshold {
		slog.Debug("matcher: fuzzy match", "input", text, "command", cmd.Name, "score", score)
		m.history.Add(text, cmd.Name, true)
		return cmd, true
	}

	m.history.Add(text, "", false)
	return nil, false
}

// fullScan scores every trigger phrase of every command against text and
// returns the command with the maximum score. Commands iterate in insertion
// order and only a strictly greater score replaces the running best, so the
// first command encountered at the maximum wins.
func (m *Matcher) fullScan(text string) (*Command, float64) {
	var (
		best      *Command
		bestScore float64
	)
	for _, cmd := range m.table.Commands() {
		for _, trigger := range cmd.Triggers {
			if score := fuzzy.Ratio(text, trigger); score > bestScore {
				bestScore = score
				best = cmd
			}
		}
	}
	return best, bestScore
}

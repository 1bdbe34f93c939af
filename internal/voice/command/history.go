package command

import (
	"sync"
	"time"
)

// historyCap bounds the ring to the most recent entries.
const historyCap = 100

// HistoryEntry records one matching attempt: the raw input, the resolved
// command name (empty when nothing matched), the outcome, and when it happened.
type HistoryEntry struct {
	Input     string
	Command   string
	Success   bool
	Timestamp time.Time
}

// History is an append-only bounded ring of matching attempts. The most
// recent successful entries act as a cache consulted before full matching,
// a fast path for repeated phrasing, never a correctness mechanism. Empty
// history is always a valid state.
//
// History is safe for concurrent use; it is shared between the matcher and
// anything inspecting recent activity.
type History struct {
	mu      sync.Mutex
	entries []HistoryEntry

	// now is injectable for tests.
	now func() time.Time
}

// NewHistory returns an empty History bounded to the 100 most recent entries.
func NewHistory() *History {
	return &History{now: time.Now}
}

// Add appends an attempt, evicting the oldest entry once the ring is full.
func (h *History) Add(input, command string, success bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, HistoryEntry{
		Input:     input,
		Command:   command,
		Success:   success,
		Timestamp: h.now(),
	})
	if len(h.entries) > historyCap {
		h.entries = h.entries[len(h.entries)-historyCap:]
	}
}

// RecentSuccessful returns up to n successful entries, newest first.
func (h *History) RecentSuccessful(n int) []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]HistoryEntry, 0, n)
	for i := len(h.entries) - 1; i >= 0 && len(out) < n; i-- {
		if h.entries[i].Success {
			out = append(out, h.entries[i])
		}
	}
	return out
}

// Len returns the number of retained entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Entries returns a copy of all retained entries, oldest first.
func (h *History) Entries() []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	cp := make([]HistoryEntry, len(h.entries))
	copy(cp, h.entries)
	return cp
}

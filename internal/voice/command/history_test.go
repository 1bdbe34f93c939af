package command

import (
	"fmt"
	"testing"
	"time"
)

func TestHistory_EvictsOldestPastCap(t *testing.T) {
	t.Parallel()

	h := NewHistory()
	for i := 0; i < historyCap+10; i++ {
		h.Add(fmt.Sprintf("input %d", i), "cmd", true)
	}

	if h.Len() != historyCap {
		t.Fatalf("Len = %d, want %d", h.Len(), historyCap)
	}
	entries := h.Entries()
	if entries[0].Input != "input 10" {
		t.Fatalf("oldest surviving entry = %q, want input 10", entries[0].Input)
	}
	if last := entries[len(entries)-1].Input; last != fmt.Sprintf("input %d", historyCap+9) {
		t.Fatalf("newest entry = %q", last)
	}
}

func TestHistory_RecentSuccessfulNewestFirst(t *testing.T) {
	t.Parallel()

	h := NewHistory()
	h.Add("first", "a", true)
	h.Add("failed", "", false)
	h.Add("second", "b", true)
	h.Add("third", "c", true)

	got := h.RecentSuccessful(2)
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if got[0].Input != "third" || got[1].Input != "second" {
		t.Fatalf("entries = %q, %q; want third, second", got[0].Input, got[1].Input)
	}
}

func TestHistory_RecentSuccessfulSkipsFailures(t *testing.T) {
	t.Parallel()

	h := NewHistory()
	h.Add("miss one", "", false)
	h.Add("miss two", "", false)

	if got := h.RecentSuccessful(5); len(got) != 0 {
		t.Fatalf("got %d entries, want 0", len(got))
	}
}

func TestHistory_TimestampsAssigned(t *testing.T) {
	t.Parallel()

	h := NewHistory()
	stamp := time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return stamp }

	h.Add("input", "cmd", true)
	if got := h.Entries()[0].Timestamp; !got.Equal(stamp) {
		t.Fatalf("Timestamp = %v, want %v", got, stamp)
	}
}

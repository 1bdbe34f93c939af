package command

import (
	"fmt"
	"testing"
)

func testTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable([]*Command{
		{
			Name:           "lights_on",
			Triggers:       []string{"turn on the lights", "lights on"},
			SuccessMessage: "Lights are on.",
		},
		{
			Name:           "lights_off",
			Triggers:       []string{"turn off the lights", "lights off"},
			SuccessMessage: "Lights are off.",
		},
		{
			Name:           "status",
			Triggers:       []string{"system status"},
			SuccessMessage: "All systems nominal.",
		},
	})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return table
}

func TestFind_ExactTriggerMatch(t *testing.T) {
	t.Parallel()
	m := NewMatcher(testTable(t), NewHistory())

	cmd, ok := m.Find("  Turn ON the Lights ")
	if !ok {
		t.Fatal("expected a match")
	}
	if cmd.Name != "lights_on" {
		t.Fatalf("matched %q, want lights_on", cmd.Name)
	}
}

func TestFind_ExactNameMatch(t *testing.T) {
	t.Parallel()
	m := NewMatcher(testTable(t), NewHistory())

	cmd, ok := m.Find("lights_off")
	if !ok || cmd.Name != "lights_off" {
		t.Fatalf("Find(lights_off) = %v, %v", cmd, ok)
	}
}

func TestFind_FuzzyThresholdBoundary(t *testing.T) {
	t.Parallel()

	table, err := NewTable([]*Command{{
		Name:           "boundary_check",
		Triggers:       []string{"abcdefghij"},
		SuccessMessage: "ok",
	}})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	tests := []struct {
		input string
		want  bool
	}{
		// distance 3 over length 10 scores exactly 0.7, which is not enough.
		{"abcdefg", false},
		// distance 2 over length 10 scores 0.8.
		{"abcdefgh", true},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			m := NewMatcher(table, NewHistory())
			_, ok := m.Find(tc.input)
			if ok != tc.want {
				t.Fatalf("Find(%q) matched = %v, want %v", tc.input, ok, tc.want)
			}
		})
	}
}

func TestFind_FirstCommandWinsTies(t *testing.T) {
	t.Parallel()

	table, err := NewTable([]*Command{
		{Name: "door", Triggers: []string{"open door"}, SuccessMessage: "ok"},
		{Name: "boor", Triggers: []string{"open boor"}, SuccessMessage: "ok"},
	})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	m := NewMatcher(table, NewHistory())

	// "open coor" is distance 1 from both triggers; insertion order decides.
	cmd, ok := m.Find("open coor")
	if !ok {
		t.Fatal("expected a match")
	}
	if cmd.Name != "door" {
		t.Fatalf("matched %q, want the earlier command door", cmd.Name)
	}
}

func TestFind_HistoryFastPathSkipsScan(t *testing.T) {
	t.Parallel()

	history := NewHistory()
	history.Add("turn on the lights", "lights_on", true)

	m := NewMatcher(testTable(t), history)
	m.scan = func(string) (*Command, float64) {
		t.Fatal("scan should not run when the history fast path hits")
		return nil, 0
	}

	// Close to the recorded input but not an exact trigger.
	cmd, ok := m.Find("turn on the light")
	if !ok || cmd.Name != "lights_on" {
		t.Fatalf("Find = %v, %v; want lights_on via history", cmd, ok)
	}
}

func TestFind_HistoryFastPathOnlyConsidersLastFive(t *testing.T) {
	t.Parallel()

	history := NewHistory()
	history.Add("system status", "status", true)
	for i := 0; i < 5; i++ {
		history.Add(fmt.Sprintf("filler entry %d", i), "lights_on", true)
	}

	m := NewMatcher(testTable(t), history)
	scanned := false
	m.scan = func(string) (*Command, float64) {
		scanned = true
		return nil, 0
	}

	// "system statu" is within 0.9 of the pushed-out entry only.
	_, ok := m.Find("system statu")
	if ok {
		t.Fatal("expected no match once the entry left the fast-path window")
	}
	if !scanned {
		t.Fatal("expected the full scan to run")
	}
}

func TestFind_MissIsRecorded(t *testing.T) {
	t.Parallel()

	history := NewHistory()
	m := NewMatcher(testTable(t), history)

	if _, ok := m.Find("completely unrelated gibberish"); ok {
		t.Fatal("expected no match")
	}
	entries := history.Entries()
	if len(entries) != 1 {
		t.Fatalf("history has %d entries, want 1", len(entries))
	}
	if entries[0].Success || entries[0].Command != "" {
		t.Fatalf("miss recorded as %+v, want unsuccessful with empty command", entries[0])
	}
}

func TestFind_MatchIsRecordedSuccessful(t *testing.T) {
	t.Parallel()

	history := NewHistory()
	m := NewMatcher(testTable(t), history)

	if _, ok := m.Find("lights on"); !ok {
		t.Fatal("expected a match")
	}
	entries := history.Entries()
	if len(entries) != 1 || !entries[0].Success || entries[0].Command != "lights_on" {
		t.Fatalf("history = %+v, want one successful lights_on entry", entries)
	}
}

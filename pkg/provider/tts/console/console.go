// Package console provides a Speaker that writes text to an io.Writer instead
// of synthesising audio. It is the degradation target when no remote voice
// backend is configured or when synthesis fails: a session must always be able
// to "speak", even if that means printing.
package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/in2theCODE/MyCODEagent/pkg/provider/tts"
)

// Compile-time assertion that Speaker satisfies tts.Speaker.
var _ tts.Speaker = (*Speaker)(nil)

// Speaker implements tts.Speaker by printing text. Safe for concurrent use.
type Speaker struct {
	mu sync.Mutex
	w  io.Writer
}

// New returns a Speaker writing to w. A nil w defaults to os.Stdout.
func New(w io.Writer) *Speaker {
	if w == nil {
		w = os.Stdout
	}
	return &Speaker{w: w}
}

// Speak writes text followed by a newline. It never fails on synthesis;
// only an underlying write error is returned.
func (s *Speaker) Speak(_ context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintln(s.w, text); err != nil {
		return fmt.Errorf("console: write: %w", err)
	}
	return nil
}

// Package registry dispatches named agent operations on behalf of the voice
// pipeline. Handlers are registered up front so a missing binding surfaces at
// startup rather than mid-conversation.
package registry

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Result is the outcome of one handler invocation.
type Result struct {
	// Success reports whether the operation achieved its effect.
	Success bool
	// Output carries any human-readable payload produced by the handler.
	Output string
	// Error describes the failure when Success is false. It is advisory;
	// handler-level failures are distinguished from transport errors, which
	// are returned from Invoke directly.
	Error string
}

// Handler executes one named operation. args are the positional values
// extracted from the utterance in parameter-declaration order, kwargs the
// values keyed by parameter name.
type Handler func(ctx context.Context, args []string, kwargs map[string]string) (Result, error)

// Registry resolves and invokes named operations.
type Registry interface {
	// Has reports whether name is bound to a handler.
	Has(name string) bool
	// Invoke runs the handler bound to name. It returns an error when no
	// handler is bound or when the handler itself returns one.
	Invoke(ctx context.Context, name string, args []string, kwargs map[string]string) (Result, error)
}

// Table is the standard in-memory Registry.
type Table struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

var _ Registry = (*Table)(nil)

// NewTable returns an empty handler table.
func NewTable() *Table {
	return &Table{handlers: make(map[string]Handler)}
}

// Register binds name to h. Names are case-insensitive. Registering an empty
// name, a nil handler, or a name that is already bound is an error.
func (t *Table) Register(name string, h Handler) error {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return fmt.Errorf("registry: empty operation name")
	}
	if h == nil {
		return fmt.Errorf("registry: nil handler for %q", name)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.handlers[key]; ok {
		return fmt.Errorf("registry: operation %q already registered", name)
	}
	t.handlers[key] = h
	return nil
}

// Has reports whether name is bound.
func (t *Table) Has(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.handlers[strings.ToLower(name)]
	return ok
}

// Invoke runs the handler bound to name.
func (t *Table) Invoke(ctx context.Context, name string, args []string, kwargs map[string]string) (Result, error) {
	t.mu.RLock()
	h, ok := t.handlers[strings.ToLower(name)]
	t.mu.RUnlock()
	if !ok {
		return Result{}, fmt.Errorf("registry: no handler for operation %q", name)
	}
	return h(ctx, args, kwargs)
}

// Package mock provides a Registry double for tests.
package mock

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/in2theCODE/MyCODEagent/internal/registry"
)

// InvokeCall records the arguments of one Invoke.
type InvokeCall struct {
	Name   string
	Args   []string
	Kwargs map[string]string
}

// Registry is a configurable registry.Registry implementation.
type Registry struct {
	mu sync.Mutex

	// Results maps lower-cased operation names to canned results.
	Results map[string]registry.Result
	// Errs maps lower-cased operation names to errors returned from Invoke.
	Errs map[string]error
	// Missing marks names that Has should deny even when a result is canned.
	Missing map[string]bool

	// Calls records every Invoke in order.
	Calls []InvokeCall
}

var _ registry.Registry = (*Registry)(nil)

// New returns a mock registry with no canned results.
func New() *Registry {
	return &Registry{
		Results: make(map[string]registry.Result),
		Errs:    make(map[string]error),
		Missing: make(map[string]bool),
	}
}

// Succeed cans a successful result for name.
func (r *Registry) Succeed(name, output string) {
	r.Results[strings.ToLower(name)] = registry.Result{Success: true, Output: output}
}

// Fail cans a non-successful result for name.
func (r *Registry) Fail(name, errMsg string) {
	r.Results[strings.ToLower(name)] = registry.Result{Success: false, Error: errMsg}
}

// Has reports whether name has a canned result and is not marked missing.
func (r *Registry) Has(name string) bool {
	key := strings.ToLower(name)
	if r.Missing[key] {
		return false
	}
	_, ok := r.Results[key]
	return ok || r.Errs[key] != nil
}

// Invoke records the call and returns the canned result or error for name.
func (r *Registry) Invoke(ctx context.Context, name string, args []string, kwargs map[string]string) (registry.Result, error) {
	r.mu.Lock()
	r.Calls = append(r.Calls, InvokeCall{Name: name, Args: args, Kwargs: kwargs})
	r.mu.Unlock()

	key := strings.ToLower(name)
	if err := r.Errs[key]; err != nil {
		return registry.Result{}, err
	}
	if res, ok := r.Results[key]; ok {
		return res, nil
	}
	return registry.Result{}, fmt.Errorf("mock: no handler for operation %q", name)
}

// CallCount returns the number of recorded invocations.
func (r *Registry) CallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Calls)
}

// Reset clears recorded calls.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = nil
}

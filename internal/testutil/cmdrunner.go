// Package testutil provides mocks, fixtures and helpers shared by the
// package tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/npratt/mindmap/internal/exec"
)

var _ exec.CommandRunner = (*MockRunner)(nil)

// CommandCall records a command invocation for assertion purposes.
type CommandCall struct {
	Name string
	Args []string
}

// DynamicResponseFunc produces a response for a command. When handled is
// false the canned responses are consulted instead.
type DynamicResponseFunc func(ctx context.Context, name string, args []string) (out []byte, err error, handled bool)

// MockRunner stands in for a mind-map generator command. Responses and
// errors are keyed by "name arg1 arg2 ..."; a key also matches any command
// line it is a prefix of.
type MockRunner struct {
	mu              sync.Mutex
	Responses       map[string][]byte
	Errors          map[string]error
	Calls           []CommandCall
	DynamicResponse DynamicResponseFunc
}

// NewMockRunner creates a MockRunner with initialized maps.
func NewMockRunner() *MockRunner {
	return &MockRunner{
		Responses: make(map[string][]byte),
		Errors:    make(map[string]error),
	}
}

// Run records the call and returns the configured response.
func (m *MockRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, CommandCall{Name: name, Args: args})

	if m.DynamicResponse != nil {
		if out, err, handled := m.DynamicResponse(ctx, name, args); handled {
			return out, err
		}
	}

	key := makeKey(name, args)
	if err, ok := m.Errors[key]; ok {
		return nil, err
	}
	if out, ok := m.Responses[key]; ok {
		return out, nil
	}

	for k, err := range m.Errors {
		if strings.HasPrefix(key, k) {
			return nil, err
		}
	}
	for k, out := range m.Responses {
		if strings.HasPrefix(key, k) {
			return out, nil
		}
	}

	return nil, fmt.Errorf("unexpected command: %s", key)
}

// SetResponse configures the output of a command.
func (m *MockRunner) SetResponse(name string, args []string, out []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[makeKey(name, args)] = out
}

// SetError configures a failing command.
func (m *MockRunner) SetError(name string, args []string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[makeKey(name, args)] = err
}

// GetCalls returns a copy of all recorded calls.
func (m *MockRunner) GetCalls() []CommandCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CommandCall, len(m.Calls))
	copy(out, m.Calls)
	return out
}

// Reset clears all recorded calls.
func (m *MockRunner) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
}

func makeKey(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}

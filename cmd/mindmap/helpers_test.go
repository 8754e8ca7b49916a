package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/npratt/mindmap/internal/exec"
	"github.com/npratt/mindmap/internal/testutil"
)

// newTestApp creates an app that logs nowhere.
func newTestApp(runner exec.CommandRunner) *app {
	if runner == nil {
		runner = testutil.NewMockRunner()
	}
	logLevel := &slog.LevelVar{}
	return &app{
		v:        newViper(),
		logger:   slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: logLevel})),
		logLevel: logLevel,
		runner:   runner,
	}
}

// runCLI executes the command tree with args and returns what it printed.
func runCLI(t *testing.T, runner exec.CommandRunner, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	return runCLIContext(t, context.Background(), runner, stdin, args...)
}

// runCLIContext is runCLI with a caller-controlled context.
func runCLIContext(t *testing.T, ctx context.Context, runner exec.CommandRunner, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd(newTestApp(runner))
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err = root.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

// safeBuffer is a bytes.Buffer that can be written and read concurrently.
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

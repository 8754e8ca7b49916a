// Package exec runs external mind-map generator commands.
package exec

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// maxStderr caps how much stderr is carried in an error message.
const maxStderr = 512

// CommandRunner abstracts command execution for dependency injection.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner executes real commands using os/exec.
type ExecRunner struct {
	// Env is appended to the inherited environment when non-empty.
	Env []string
}

// NewExecRunner creates a new ExecRunner for production use.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes a command and returns its stdout. A failing command's
// stderr is folded into the returned error.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := execCommand(ctx, name, args...)
	if len(r.Env) > 0 {
		cmd.SetEnv(r.Env)
	}
	stdout, stderr, err := cmd.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return stdout, fmt.Errorf("%s: %w", name, ctxErr)
		}
		if msg := trimStderr(stderr); msg != "" {
			return stdout, fmt.Errorf("%w: %s", err, msg)
		}
		return stdout, err
	}
	return stdout, nil
}

func trimStderr(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxStderr {
		s = s[:maxStderr] + "..."
	}
	return s
}

// execCommand is a variable to allow testing.
var execCommand = execCommandImpl

func execCommandImpl(ctx context.Context, name string, args ...string) execCmd {
	return &realExecCmd{cmd: exec.CommandContext(ctx, name, args...)}
}

// execCmd abstracts exec.Cmd for testing.
type execCmd interface {
	SetEnv(env []string)
	Run() (stdout, stderr []byte, err error)
}

type realExecCmd struct {
	cmd *exec.Cmd
}

func (c *realExecCmd) SetEnv(env []string) {
	c.cmd.Env = append(c.cmd.Environ(), env...)
}

func (c *realExecCmd) Run() ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	c.cmd.Stdout = &stdout
	c.cmd.Stderr = &stderr
	err := c.cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

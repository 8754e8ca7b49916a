package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/npratt/mindmap/internal/exec"
)

// DefaultCommandTimeout bounds an external generator command.
const DefaultCommandTimeout = 2 * time.Minute

// CommandLoader runs an external command and decodes its stdout.
type CommandLoader struct {
	runner  exec.CommandRunner
	name    string
	args    []string
	timeout time.Duration
	Decoder Decoder
}

// NewCommandLoader creates a CommandLoader for the given command line.
func NewCommandLoader(runner exec.CommandRunner, name string, args ...string) *CommandLoader {
	return &CommandLoader{
		runner:  runner,
		name:    name,
		args:    args,
		timeout: DefaultCommandTimeout,
	}
}

// WithTimeout returns a copy of the loader with the specified timeout.
func (l *CommandLoader) WithTimeout(d time.Duration) *CommandLoader {
	c := *l
	c.timeout = d
	return &c
}

// Load implements Loader.
func (l *CommandLoader) Load(ctx context.Context) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	output, err := l.runner.Run(ctx, l.name, l.args...)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", l.commandLine(), err)
	}
	if len(strings.TrimSpace(string(output))) == 0 {
		return nil, ErrNoData
	}

	res, err := l.Decoder.Decode(output)
	if err != nil {
		return nil, fmt.Errorf("parse %s output: %w", l.name, err)
	}
	return res, nil
}

func (l *CommandLoader) commandLine() string {
	if len(l.args) == 0 {
		return l.name
	}
	return l.name + " " + strings.Join(l.args, " ")
}

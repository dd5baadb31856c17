package model

import (
	"errors"
	"fmt"
	"strings"
)

// CommandResult is the captured output of a successful command
type CommandResult struct {
	Output string
}

// RunOptions holds per-call options of a command run
type RunOptions struct {
	Dir string
}

// RunOption is a functional option for a command run
type RunOption func(*RunOptions)

// WithDir runs the command in dir instead of the runner's base directory
func WithDir(dir string) RunOption {
	return func(o *RunOptions) {
		o.Dir = dir
	}
}

// NewRunOptions applies opts to an empty RunOptions
func NewRunOptions(opts ...RunOption) *RunOptions {
	o := &RunOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// CommandError is returned when a command can not be started or exits non-zero
type CommandError struct {
	Command  string
	ExitCode int // -1 if the command did not run
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command %q failed", e.Command)
	if e.ExitCode >= 0 {
		msg += fmt.Sprintf(" with exit code %d", e.ExitCode)
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExitCode returns the exit code carried by err, or -1 if err is not a CommandError
func ExitCode(err error) int {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	return -1
}

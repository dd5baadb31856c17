package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/m-mizutani/shipit/pkg/domain/interfaces"
	"github.com/m-mizutani/shipit/pkg/domain/model"
	"github.com/m-mizutani/shipit/pkg/utils/cmdline"
)

// Executor runs shell-level commands in-process with mvdan.cc/sh. External programs
// such as git are started by the interpreter.
type Executor struct {
	dir     string
	env     []string
	dryRun  bool
	verbose bool
	console io.Writer
}

var _ interfaces.CommandRunner = (*Executor)(nil)

// Option is a functional option for Executor
type Option func(*Executor)

// WithDir sets the base working directory
func WithDir(dir string) Option {
	return func(e *Executor) {
		e.dir = dir
	}
}

// WithDryRun skips all mutating commands
func WithDryRun(dryRun bool) Option {
	return func(e *Executor) {
		e.dryRun = dryRun
	}
}

// WithVerbose echoes every command and its output to the console
func WithVerbose(verbose bool) Option {
	return func(e *Executor) {
		e.verbose = verbose
	}
}

// WithConsole sets the writer used for echoing. Default is os.Stdout
func WithConsole(w io.Writer) Option {
	return func(e *Executor) {
		e.console = w
	}
}

// WithEnv replaces the environment of commands. Default is os.Environ()
func WithEnv(env []string) Option {
	return func(e *Executor) {
		e.env = env
	}
}

// New creates a new Executor
func New(opts ...Option) *Executor {
	e := &Executor{
		console: os.Stdout,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.env == nil {
		e.env = os.Environ()
	}
	return e
}

// Run runs command. Mutating commands resolve to an empty result without running in dry-run mode.
func (e *Executor) Run(ctx context.Context, command string, opts ...model.RunOption) (*model.CommandResult, error) {
	logger := ctxlog.From(ctx)
	runOpts := model.NewRunOptions(opts...)

	line, readOnly := cmdline.Parse(command)
	dir := e.resolveDir(runOpts.Dir)

	if e.dryRun && !readOnly {
		logger.Info("dry-run: skip command", "command", line, "dir", dir)
		e.echo(line, "", true)
		return &model.CommandResult{}, nil
	}

	logger.Debug("Running command", "command", line, "dir", dir, "read_only", readOnly)

	prog, err := syntax.NewParser().Parse(strings.NewReader(line), "")
	if err != nil {
		return nil, goerr.Wrap(&model.CommandError{Command: line, ExitCode: -1, Err: err}, "failed to parse command")
	}

	var stdout, stderr bytes.Buffer
	runner, err := interp.New(
		interp.Dir(dir),
		interp.Env(expand.ListEnviron(e.env...)),
		interp.StdIO(nil, &stdout, &stderr),
	)
	if err != nil {
		return nil, goerr.Wrap(&model.CommandError{Command: line, ExitCode: -1, Err: err}, "failed to create interpreter")
	}

	if err := runner.Run(ctx, prog); err != nil {
		exitCode := -1
		var status interp.ExitStatus
		if errors.As(err, &status) {
			exitCode = int(status)
		}

		cmdErr := &model.CommandError{
			Command:  line,
			ExitCode: exitCode,
			Stderr:   stderr.String(),
			Err:      err,
		}
		logger.Debug("Command failed", "command", line, "exit_code", exitCode, "stderr", cmdErr.Stderr)
		return nil, goerr.Wrap(cmdErr, "command failed", goerr.V("command", line), goerr.V("exit_code", exitCode))
	}

	output := stdout.String()
	e.echo(line, output, false)
	return &model.CommandResult{Output: output}, nil
}

func (e *Executor) resolveDir(dir string) string {
	switch {
	case dir == "":
		return e.dir
	case filepath.IsAbs(dir) || e.dir == "":
		return dir
	default:
		return filepath.Join(e.dir, dir)
	}
}

func (e *Executor) echo(line, output string, skipped bool) {
	if !e.verbose || e.console == nil {
		return
	}

	prompt := color.New(color.FgCyan, color.Bold)
	if skipped {
		prompt = color.New(color.FgYellow)
		_, _ = prompt.Fprint(e.console, "$ (dry-run) ")
	} else {
		_, _ = prompt.Fprint(e.console, "$ ")
	}
	_, _ = fmt.Fprintln(e.console, line)

	if out := strings.TrimRight(output, "\n"); out != "" {
		_, _ = fmt.Fprintln(e.console, out)
	}
}

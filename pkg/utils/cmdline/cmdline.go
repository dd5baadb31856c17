// Package cmdline builds the command lines handed to a CommandRunner.
package cmdline

import (
	"strings"

	"github.com/kballard/go-shellquote"
)

const readOnlyPrefix = "!"

// ReadOnly marks line as read-only so that it also runs in dry-run mode
func ReadOnly(line string) string {
	return readOnlyPrefix + line
}

// Parse strips the read-only sentinel from command
func Parse(command string) (line string, readOnly bool) {
	return strings.CutPrefix(command, readOnlyPrefix)
}

// Join quotes args into a single command line. Empty args are dropped.
func Join(args ...string) string {
	filtered := make([]string, 0, len(args))
	for _, arg := range args {
		if arg != "" {
			filtered = append(filtered, arg)
		}
	}
	return shellquote.Join(filtered...)
}

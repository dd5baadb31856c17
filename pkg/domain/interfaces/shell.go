package interfaces

import (
	"context"

	"github.com/m-mizutani/shipit/pkg/domain/model"
)

// CommandRunner runs a single shell-level command. A command starting with "!" is
// read-only and runs even in dry-run mode; any other command is mutating.
type CommandRunner interface {
	Run(ctx context.Context, command string, opts ...model.RunOption) (*model.CommandResult, error)
}

package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/shipit/pkg/domain/model"
	"github.com/m-mizutani/shipit/pkg/domain/types"
	"github.com/m-mizutani/shipit/pkg/utils/cmdline"
	"github.com/m-mizutani/shipit/pkg/utils/tmpl"
)

// Changelog produces the changelog text with an external command
type Changelog struct {
	git         *Git
	command     string
	tagTemplate string
}

// NewChangelog creates a Changelog. command may contain [REV_RANGE], which is
// replaced by "<previous tag>...HEAD" or by nothing when the previous tag is unknown.
func NewChangelog(git *Git, command, tagTemplate string) *Changelog {
	return &Changelog{
		git:         git,
		command:     command,
		tagTemplate: tagTemplate,
	}
}

// Generate runs the changelog command and stores its output in state.Changelog.
// It reads state.PreviousVersion.
func (c *Changelog) Generate(ctx context.Context, state *model.RunState) error {
	if c.command == "" {
		return nil
	}

	command := c.command
	if strings.Contains(command, types.RevRangePlaceholder) {
		revRange, err := c.revRange(ctx, state.PreviousVersion)
		if err != nil {
			return err
		}
		command = strings.ReplaceAll(command, types.RevRangePlaceholder, revRange)
	}

	result, err := c.git.run(ctx, cmdline.ReadOnly(command))
	if err != nil {
		return goerr.Wrap(err, "failed to run changelog command", goerr.V("command", command))
	}

	state.Changelog = result.Output
	ctxlog.From(ctx).Debug("Generated changelog", "command", command, "length", len(result.Output))
	return nil
}

func (c *Changelog) revRange(ctx context.Context, previousVersion string) (string, error) {
	logger := ctxlog.From(ctx)
	if previousVersion == "" {
		logger.Debug("No previous version, changelog covers the whole history")
		return "", nil
	}

	previousTag := tmpl.Version(c.tagTemplate, previousVersion)
	exists, err := c.git.TagExists(ctx, previousTag)
	if err != nil {
		logger.Warn("Probably the previous version is not a known tag in the repository.")
		logger.Debug("tag check failed", "error", err)
		return "", goerr.Wrap(err, fmt.Sprintf("could not create changelog from latest tag (%s) to HEAD", previousTag))
	}
	if !exists {
		logger.Debug("Previous tag does not exist, changelog covers the whole history", "tag", previousTag)
		return "", nil
	}

	return previousTag + "...HEAD", nil
}

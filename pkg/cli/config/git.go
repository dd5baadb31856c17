package config

import (
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/shipit/pkg/usecase"
)

// DefaultChangelogCommand lists the commit subjects since the previous tag
const DefaultChangelogCommand = `git log --pretty=format:"* %s (%h)" [REV_RANGE]`

// Git holds configuration of the git steps of a release
type Git struct {
	DryRun  bool
	Force   bool
	Verbose bool

	RequireCleanWorkingDir bool
	RemoteURL              string
	PushRepo               string
	PreviousVersion        string

	CommitMessage    string
	TagName          string
	TagAnnotation    string
	ChangelogCommand string

	StageFiles []string
	StageAll   bool
}

// Flags returns CLI flags for git configuration
func (c *Git) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "dry-run",
			Aliases:     []string{"d"},
			Usage:       "Run read-only commands only, skip everything that changes the repository or remote",
			Destination: &c.DryRun,
			Sources:     cli.EnvVars("SHIPIT_DRY_RUN"),
		},
		&cli.BoolFlag{
			Name:        "force",
			Aliases:     []string{"f"},
			Usage:       "Allow empty commits and move existing tags",
			Destination: &c.Force,
			Sources:     cli.EnvVars("SHIPIT_FORCE"),
		},
		&cli.BoolFlag{
			Name:        "verbose",
			Usage:       "Echo every command and its output",
			Destination: &c.Verbose,
			Sources:     cli.EnvVars("SHIPIT_VERBOSE"),
		},
		&cli.BoolFlag{
			Name:        "require-clean",
			Usage:       "Abort when the working directory has uncommitted changes",
			Value:       true,
			Destination: &c.RequireCleanWorkingDir,
			Sources:     cli.EnvVars("SHIPIT_REQUIRE_CLEAN"),
		},
		&cli.StringFlag{
			Name:        "remote-url",
			Usage:       "Remote repository URL (default: remote.origin.url)",
			Destination: &c.RemoteURL,
			Sources:     cli.EnvVars("SHIPIT_REMOTE_URL"),
		},
		&cli.StringFlag{
			Name:        "push-repo",
			Usage:       "Repository URL to push to (default: upstream of the current branch)",
			Destination: &c.PushRepo,
			Sources:     cli.EnvVars("SHIPIT_PUSH_REPO"),
		},
		&cli.StringFlag{
			Name:        "previous-version",
			Usage:       "Previous version (default: resolved from the latest tag)",
			Destination: &c.PreviousVersion,
			Sources:     cli.EnvVars("SHIPIT_PREVIOUS_VERSION"),
		},
		&cli.StringFlag{
			Name:        "commit-message",
			Usage:       "Commit message template, %s or ${version} is replaced by the version",
			Value:       "Release %s",
			Destination: &c.CommitMessage,
			Sources:     cli.EnvVars("SHIPIT_COMMIT_MESSAGE"),
		},
		&cli.StringFlag{
			Name:        "tag-name",
			Usage:       "Tag name template",
			Value:       "%s",
			Destination: &c.TagName,
			Sources:     cli.EnvVars("SHIPIT_TAG_NAME"),
		},
		&cli.StringFlag{
			Name:        "tag-annotation",
			Usage:       "Tag annotation template",
			Value:       "Release %s",
			Destination: &c.TagAnnotation,
			Sources:     cli.EnvVars("SHIPIT_TAG_ANNOTATION"),
		},
		&cli.StringFlag{
			Name:        "changelog-command",
			Usage:       "Command printing the changelog, [REV_RANGE] is replaced by <previous tag>...HEAD",
			Value:       DefaultChangelogCommand,
			Destination: &c.ChangelogCommand,
			Sources:     cli.EnvVars("SHIPIT_CHANGELOG_COMMAND"),
		},
		&cli.StringSliceFlag{
			Name:        "stage",
			Usage:       "File to stage before commit (repeatable)",
			Destination: &c.StageFiles,
			Sources:     cli.EnvVars("SHIPIT_STAGE"),
		},
		&cli.BoolFlag{
			Name:        "stage-all",
			Usage:       "Stage every change in the working directory before commit",
			Destination: &c.StageAll,
			Sources:     cli.EnvVars("SHIPIT_STAGE_ALL"),
		},
	}
}

// WorkflowConfig converts the configuration for usecase.Workflow
func (c *Git) WorkflowConfig() usecase.WorkflowConfig {
	return usecase.WorkflowConfig{
		RemoteURL:              c.RemoteURL,
		PushURL:                c.PushRepo,
		PreviousVersion:        c.PreviousVersion,
		RequireCleanWorkingDir: c.RequireCleanWorkingDir,
		StageFiles:             c.StageFiles,
		StageAll:               c.StageAll,
		CommitMessage:          c.CommitMessage,
		TagName:                c.TagName,
		TagAnnotation:          c.TagAnnotation,
	}
}

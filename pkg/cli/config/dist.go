package config

import (
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/shipit/pkg/usecase"
)

// Dist holds configuration of the companion repository receiving the build output
type Dist struct {
	Repo          string
	StageDir      string
	BaseDir       string
	Files         string
	CommitMessage string
	TagName       string
	TagAnnotation string
	PushRepo      string
}

// Flags returns CLI flags for the companion repository
func (c *Dist) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "dist-repo",
			Usage:       "Companion repository as url[#branch], enables the dist release",
			Destination: &c.Repo,
			Sources:     cli.EnvVars("SHIPIT_DIST_REPO"),
		},
		&cli.StringFlag{
			Name:        "dist-stage-dir",
			Usage:       "Directory the companion repository is cloned into",
			Value:       ".stage",
			Destination: &c.StageDir,
			Sources:     cli.EnvVars("SHIPIT_DIST_STAGE_DIR"),
		},
		&cli.StringFlag{
			Name:        "dist-base-dir",
			Usage:       "Directory of the build output",
			Value:       "dist",
			Destination: &c.BaseDir,
			Sources:     cli.EnvVars("SHIPIT_DIST_BASE_DIR"),
		},
		&cli.StringFlag{
			Name:        "dist-files",
			Usage:       "Glob of files under the base directory to copy",
			Value:       "**",
			Destination: &c.Files,
			Sources:     cli.EnvVars("SHIPIT_DIST_FILES"),
		},
		&cli.StringFlag{
			Name:        "dist-commit-message",
			Usage:       "Commit message template of the companion repository",
			Value:       "Release %s",
			Destination: &c.CommitMessage,
			Sources:     cli.EnvVars("SHIPIT_DIST_COMMIT_MESSAGE"),
		},
		&cli.StringFlag{
			Name:        "dist-tag-name",
			Usage:       "Tag name template of the companion repository",
			Value:       "%s",
			Destination: &c.TagName,
			Sources:     cli.EnvVars("SHIPIT_DIST_TAG_NAME"),
		},
		&cli.StringFlag{
			Name:        "dist-tag-annotation",
			Usage:       "Tag annotation template of the companion repository",
			Value:       "Release %s",
			Destination: &c.TagAnnotation,
			Sources:     cli.EnvVars("SHIPIT_DIST_TAG_ANNOTATION"),
		},
		&cli.StringFlag{
			Name:        "dist-push-repo",
			Usage:       "Repository URL the companion repository is pushed to",
			Destination: &c.PushRepo,
			Sources:     cli.EnvVars("SHIPIT_DIST_PUSH_REPO"),
		},
	}
}

// DistConfig converts the configuration for usecase.Workflow. It returns nil when no repository is set.
func (c *Dist) DistConfig() *usecase.DistConfig {
	if c.Repo == "" {
		return nil
	}
	return &usecase.DistConfig{
		Repo:          c.Repo,
		StageDir:      c.StageDir,
		BaseDir:       c.BaseDir,
		Files:         c.Files,
		CommitMessage: c.CommitMessage,
		TagName:       c.TagName,
		TagAnnotation: c.TagAnnotation,
		PushURL:       c.PushRepo,
	}
}

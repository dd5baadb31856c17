package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/shipit/pkg/cli/config"
	"github.com/m-mizutani/shipit/pkg/domain/model"
	"github.com/m-mizutani/shipit/pkg/infra/github"
	"github.com/m-mizutani/shipit/pkg/infra/glob"
	"github.com/m-mizutani/shipit/pkg/infra/shell"
	"github.com/m-mizutani/shipit/pkg/usecase"
)

func cmdRelease(configPath *string) *cli.Command {
	var (
		gitCfg    config.Git
		githubCfg config.GitHub
		distCfg   config.Dist
		slackCfg  config.Slack
	)

	flags := append(gitCfg.Flags(), githubCfg.Flags()...)
	flags = append(flags, distCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:      "release",
		Aliases:   []string{"r"},
		Usage:     "Release a version",
		ArgsUsage: "[VERSION|major|minor|patch]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			file, err := config.LoadFile(*configPath, c.IsSet("config"))
			if err != nil {
				return err
			}
			file.Git.Apply(c, &gitCfg)
			file.GitHub.Apply(c, &githubCfg)
			file.Dist.Apply(c, &distCfg)
			file.Slack.Apply(c, &slackCfg)

			logger.Debug("Configuration loaded",
				slog.Any("git", gitCfg),
				slog.Any("github", githubCfg),
				slog.Any("dist", distCfg),
				slog.Any("slack", slackCfg),
			)

			executor := shell.New(
				shell.WithDryRun(gitCfg.DryRun),
				shell.WithVerbose(gitCfg.Verbose),
			)
			git := usecase.NewGit(executor, usecase.WithGitVerbose(gitCfg.Verbose))
			finder := glob.NewFinder("")

			wfCfg := gitCfg.WorkflowConfig()
			wfCfg.Assets = githubCfg.Assets
			wfCfg.Dist = distCfg.DistConfig()

			opts := []usecase.WorkflowOption{
				usecase.WithDryRun(gitCfg.DryRun),
				usecase.WithForce(gitCfg.Force),
				usecase.WithFinder(finder),
			}
			if gitCfg.ChangelogCommand != "" {
				opts = append(opts, usecase.WithChangelog(usecase.NewChangelog(git, gitCfg.ChangelogCommand, gitCfg.TagName)))
			}

			if githubCfg.Release {
				publisher, remoteURL, err := newPublisher(ctx, git, finder, &githubCfg, gitCfg.TagName, wfCfg.RemoteURL)
				if err != nil {
					return err
				}
				wfCfg.RemoteURL = remoteURL
				opts = append(opts, usecase.WithPublisher(publisher))
			}

			if notifier := slackCfg.Notifier(); notifier != nil {
				opts = append(opts, usecase.WithNotifier(notifier))
			}

			workflow := usecase.NewWorkflow(git, wfCfg, opts...)
			return workflow.Run(ctx, c.Args().First())
		},
	}
}

// newPublisher builds the GitHub client for the host of the remote once, before the workflow starts
func newPublisher(ctx context.Context, git *usecase.Git, finder *glob.Finder, cfg *config.GitHub, tagName, remoteURL string) (*usecase.Publisher, string, error) {
	if remoteURL == "" {
		if err := git.IsGitRepo(ctx); err != nil {
			return nil, "", err
		}
		url, err := git.RemoteURL(ctx)
		if err != nil {
			return nil, "", err
		}
		remoteURL = url
	}

	repo, err := model.ParseRepo(remoteURL)
	if err != nil {
		return nil, "", goerr.Wrap(err, "failed to resolve GitHub repository")
	}

	clientOpts, err := cfg.ClientOptions()
	if err != nil {
		return nil, "", err
	}
	client, err := github.NewClient(repo.Host, clientOpts...)
	if err != nil {
		return nil, "", err
	}

	retryClient := usecase.NewRetryReleaseClient(client, usecase.WithAttempts(cfg.Attempts))
	return usecase.NewPublisher(retryClient, finder, cfg.ReleaseConfig(tagName)), remoteURL, nil
}

package config_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/shipit/pkg/cli/config"
)

func TestFlags_Names(t *testing.T) {
	var (
		gitCfg    config.Git
		githubCfg config.GitHub
		distCfg   config.Dist
		slackCfg  config.Slack
		sentryCfg config.Sentry
	)

	seen := make(map[string]bool)
	all := append(gitCfg.Flags(), githubCfg.Flags()...)
	all = append(all, distCfg.Flags()...)
	all = append(all, slackCfg.Flags()...)
	all = append(all, sentryCfg.Flags()...)

	for _, f := range all {
		name := f.Names()[0]
		gt.Bool(t, seen[name]).False()
		seen[name] = true
	}

	for _, name := range []string{"dry-run", "force", "tag-name", "changelog-command", "github-release", "github-token-ref", "dist-repo", "slack-webhook-url", "sentry-dsn"} {
		gt.Bool(t, seen[name]).True()
	}
}

func TestGit_WorkflowConfig(t *testing.T) {
	cfg := &config.Git{
		RequireCleanWorkingDir: true,
		PushRepo:               "git@github.com:owner/fork.git",
		CommitMessage:          "Release %s",
		TagName:                "v%s",
		TagAnnotation:          "Release %s",
		StageFiles:             []string{"package.json"},
	}

	wf := cfg.WorkflowConfig()
	gt.Bool(t, wf.RequireCleanWorkingDir).True()
	gt.Value(t, wf.PushURL).Equal("git@github.com:owner/fork.git")
	gt.Value(t, wf.TagName).Equal("v%s")
	gt.Value(t, wf.StageFiles).Equal([]string{"package.json"})
	gt.Value(t, wf.Dist).Nil()
}

func TestDist_DistConfig(t *testing.T) {
	gt.Value(t, (&config.Dist{StageDir: ".stage"}).DistConfig()).Nil()

	dist := (&config.Dist{Repo: "https://github.com/owner/dist.git#main", StageDir: ".stage", BaseDir: "dist", Files: "**"}).DistConfig()
	gt.Value(t, dist).NotNil()
	gt.Value(t, dist.Repo).Equal("https://github.com/owner/dist.git#main")
	gt.Value(t, dist.Files).Equal("**")
}

func TestSlack_Notifier(t *testing.T) {
	gt.Value(t, (&config.Slack{}).Notifier()).Nil()
	gt.Value(t, (&config.Slack{WebhookURL: "https://hooks.slack.com/services/x"}).Notifier()).NotNil()
}

func TestSentry_Disabled(t *testing.T) {
	cfg := &config.Sentry{}
	gt.Bool(t, cfg.Enabled()).False()
	gt.NoError(t, cfg.Configure())
	cfg.Report(nil)
}

package usecase_test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/shipit/pkg/domain/types"
	"github.com/m-mizutani/shipit/pkg/infra/glob"
	"github.com/m-mizutani/shipit/pkg/infra/shell"
	"github.com/m-mizutani/shipit/pkg/usecase"
	"github.com/m-mizutani/shipit/pkg/utils/cmdline"
)

func newTestWorkflowConfig() usecase.WorkflowConfig {
	return usecase.WorkflowConfig{
		CommitMessage: "Release %s",
		TagName:       "v%s",
		TagAnnotation: "Release %s",
		Assets:        "dist/*.tar.gz",
	}
}

func newReleasedRunner() *mockRunner {
	return newMockRunner().
		on("git config --get remote.origin.url", "git@github.com:owner/project.git\n", nil).
		on("git describe", "v1.2.0\n", nil).
		on("git log", "* feat: add something (abc123)", nil)
}

func TestWorkflow_Run(t *testing.T) {
	ctx := context.Background()
	runner := newReleasedRunner()
	git := usecase.NewGit(runner)
	client := &mockReleaseClient{}
	finder := &mockFinder{files: map[string][]string{
		"dist/*.tar.gz": {"dist/app-linux.tar.gz"},
		"build/**":      {"build/app.js", "build/css/app.css"},
	}}
	notifier := &mockNotifier{}

	cfg := newTestWorkflowConfig()
	cfg.RequireCleanWorkingDir = true
	cfg.StageFiles = []string{"package.json"}
	cfg.Dist = &usecase.DistConfig{
		Repo:          "https://github.com/owner/project-dist.git#main",
		StageDir:      ".stage",
		BaseDir:       "build",
		Files:         "**",
		CommitMessage: "Dist %s",
		TagName:       "v%s",
		TagAnnotation: "Dist %s",
	}

	wf := usecase.NewWorkflow(git, cfg,
		usecase.WithChangelog(usecase.NewChangelog(git, "git log --oneline [REV_RANGE]", cfg.TagName)),
		usecase.WithPublisher(usecase.NewPublisher(client, finder, usecase.ReleaseConfig{TagName: "v%s", ReleaseName: "Release %s"})),
		usecase.WithFinder(finder),
		usecase.WithNotifier(notifier),
	)

	gt.NoError(t, wf.Run(ctx, "minor"))

	t.Run("git steps run in order", func(t *testing.T) {
		steps := []string{
			"git rev-parse --git-dir",
			"git diff-index",
			"git config --get remote.origin.url",
			"git describe",
			"git show-ref",
			"git log --oneline v1.2.0...HEAD",
			cmdline.Join("git", "add", "package.json"),
			"git status",
			cmdline.Join("git", "commit", "--message=Release 1.3.0"),
			cmdline.Join("git", "tag", "--annotate", "--message=Release 1.3.0", "v1.3.0"),
			"git push --follow-tags",
		}
		last := -1
		for _, step := range steps {
			idx := runner.index(step)
			gt.Number(t, idx).Greater(last)
			last = idx
		}
	})

	t.Run("release is created with changelog", func(t *testing.T) {
		gt.Number(t, client.createCount()).Equal(1)
		gt.Value(t, client.createCalls[0].TagName).Equal("v1.3.0")
		gt.Value(t, client.createCalls[0].Body).Equal("* feat: add something (abc123)")
		gt.Number(t, client.uploadCount()).Equal(1)
		gt.Value(t, client.uploadCalls[0].FilePath).Equal("dist/app-linux.tar.gz")
	})

	t.Run("companion repository is released", func(t *testing.T) {
		gt.Bool(t, runner.has(cmdline.Join("git", "clone", "https://github.com/owner/project-dist.git", "-b", "main", "--single-branch", ".stage"))).True()
		gt.Bool(t, runner.has(cmdline.Join("cp", "build/css/app.css", filepath.Join(".stage", "css", "app.css")))).True()
		gt.Bool(t, runner.has(cmdline.Join("git", "commit", "--message=Dist 1.3.0"))).True()

		var distDirs int
		for _, call := range runner.calls {
			if call.Dir == ".stage" {
				distDirs++
			}
		}
		gt.Number(t, distDirs).Greater(0)
	})

	t.Run("notification has the final state", func(t *testing.T) {
		gt.Number(t, len(notifier.calls)).Equal(1)
		state := notifier.calls[0]
		gt.Value(t, state.Version).Equal("1.3.0")
		gt.Value(t, state.PreviousVersion).Equal("1.2.0")
		gt.Number(t, state.ReleaseID).Equal(int64(1))
		gt.Bool(t, state.TagSet).True()
		_, ok := state.HasChanges[types.RepoDist]
		gt.Bool(t, ok).True()
	})
}

func TestWorkflow_Run_DirtyWorkingDir(t *testing.T) {
	runner := newReleasedRunner().on("git diff-index", "", exitErr("git diff-index", 1))
	client := &mockReleaseClient{}

	cfg := newTestWorkflowConfig()
	cfg.RequireCleanWorkingDir = true
	cfg.StageAll = true
	wf := usecase.NewWorkflow(usecase.NewGit(runner), cfg,
		usecase.WithPublisher(usecase.NewPublisher(client, &mockFinder{}, usecase.ReleaseConfig{TagName: "v%s"})),
	)

	err := wf.Run(context.Background(), "1.0.0")
	gt.Bool(t, errors.Is(err, usecase.ErrWorkingDirNotClean)).True()
	gt.Bool(t, runner.has("git add")).False()
	gt.Bool(t, runner.has("git commit")).False()
	gt.Number(t, client.createCount()).Equal(0)
}

func TestWorkflow_Run_PushFailure(t *testing.T) {
	runner := newReleasedRunner().on("git push", "", exitErr("git push", 128))
	client := &mockReleaseClient{}

	wf := usecase.NewWorkflow(usecase.NewGit(runner), newTestWorkflowConfig(),
		usecase.WithPublisher(usecase.NewPublisher(client, &mockFinder{}, usecase.ReleaseConfig{TagName: "v%s"})),
	)

	gt.Error(t, wf.Run(context.Background(), "1.0.0"))
	gt.Bool(t, runner.has("git push --follow-tags")).False()
	gt.Number(t, client.createCount()).Equal(0)
}

func TestWorkflow_Run_PreviousVersionOverride(t *testing.T) {
	runner := newReleasedRunner()
	notifier := &mockNotifier{}

	cfg := newTestWorkflowConfig()
	cfg.PreviousVersion = "0.9.0"
	cfg.RemoteURL = "https://github.com/owner/project.git"
	wf := usecase.NewWorkflow(usecase.NewGit(runner), cfg, usecase.WithNotifier(notifier))

	gt.NoError(t, wf.Run(context.Background(), "patch"))
	gt.Bool(t, runner.has("git describe")).False()
	gt.Bool(t, runner.has("git config")).False()
	gt.Value(t, notifier.calls[0].Version).Equal("0.9.1")
}

func TestWorkflow_Run_NotificationFailureIsSoft(t *testing.T) {
	notifier := &mockNotifier{err: errors.New("webhook down")}
	wf := usecase.NewWorkflow(usecase.NewGit(newReleasedRunner()), newTestWorkflowConfig(), usecase.WithNotifier(notifier))

	gt.NoError(t, wf.Run(context.Background(), "2.0.0"))
	gt.Number(t, len(notifier.calls)).Equal(1)
}

func TestWorkflow_Run_DryRunMock(t *testing.T) {
	client := &mockReleaseClient{}
	finder := &mockFinder{files: map[string][]string{"dist/*.tar.gz": {"dist/app.tar.gz"}}}
	notifier := &mockNotifier{}

	wf := usecase.NewWorkflow(usecase.NewGit(newReleasedRunner()), newTestWorkflowConfig(),
		usecase.WithPublisher(usecase.NewPublisher(client, finder, usecase.ReleaseConfig{TagName: "v%s"})),
		usecase.WithNotifier(notifier),
		usecase.WithDryRun(true),
	)

	gt.NoError(t, wf.Run(context.Background(), "1.0.0"))
	gt.Number(t, client.createCount()).Equal(0)
	gt.Number(t, client.uploadCount()).Equal(0)
	gt.Number(t, len(notifier.calls)).Equal(0)
}

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=shipit", "GIT_AUTHOR_EMAIL=shipit@example.com",
		"GIT_COMMITTER_NAME=shipit", "GIT_COMMITTER_EMAIL=shipit@example.com",
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return string(out)
}

func TestWorkflow_Run_DryRunWithGit(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git is not available")
	}

	ctx := context.Background()
	dir := t.TempDir()
	runGit(t, dir, "init", "--quiet")
	gt.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# project\n"), 0644))
	runGit(t, dir, "add", "README.md")
	runGit(t, dir, "commit", "--quiet", "--message=initial")
	runGit(t, dir, "tag", "--annotate", "--message=Release 0.1.0", "v0.1.0")
	runGit(t, dir, "remote", "add", "origin", "git@github.com:owner/project.git")

	gt.NoError(t, os.MkdirAll(filepath.Join(dir, "dist"), 0755))
	gt.NoError(t, os.WriteFile(filepath.Join(dir, "dist", "app.tar.gz"), []byte("binary"), 0644))

	executor := shell.New(shell.WithDir(dir), shell.WithDryRun(true))
	git := usecase.NewGit(executor, usecase.WithGitConsole(nil))
	client := &mockReleaseClient{}

	cfg := newTestWorkflowConfig()
	cfg.RequireCleanWorkingDir = true
	cfg.StageAll = true
	wf := usecase.NewWorkflow(git, cfg,
		usecase.WithChangelog(usecase.NewChangelog(git, "git log --oneline [REV_RANGE]", cfg.TagName)),
		usecase.WithPublisher(usecase.NewPublisher(client, glob.NewFinder(dir), usecase.ReleaseConfig{TagName: "v%s", ReleaseName: "%s"})),
		usecase.WithDryRun(true),
	)

	gt.NoError(t, wf.Run(ctx, "minor"))

	gt.Number(t, client.createCount()).Equal(0)
	gt.Number(t, client.uploadCount()).Equal(0)
	gt.Value(t, strings.TrimSpace(runGit(t, dir, "tag", "--list"))).Equal("v0.1.0")
	gt.Value(t, strings.TrimSpace(runGit(t, dir, "rev-list", "--count", "HEAD"))).Equal("1")
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/shipit/pkg/domain/interfaces"
	"github.com/m-mizutani/shipit/pkg/domain/model"
	"github.com/m-mizutani/shipit/pkg/domain/types"
	"github.com/m-mizutani/shipit/pkg/utils/cmdline"
	"github.com/m-mizutani/shipit/pkg/utils/tmpl"
)

var (
	// ErrNotGitRepo is returned when the working directory is not inside a git repository
	ErrNotGitRepo = errors.New("not a git repository")

	// ErrWorkingDirNotClean is returned when a clean working directory is required but it has changes
	ErrWorkingDirNotClean = errors.New("working dir must be clean")

	// ErrNoRemoteURL is returned when remote.origin.url is not configured
	ErrNoRemoteURL = errors.New("could not get remote Git url")
)

// Git sequences the git steps of a release. Most steps are soft-fail: they log and
// continue because "nothing changed since the last release" is an expected state.
type Git struct {
	runner  interfaces.CommandRunner
	dir     string
	verbose bool
	console io.Writer
}

// GitOption is a functional option for Git
type GitOption func(*Git)

// WithGitDir runs every git command in dir
func WithGitDir(dir string) GitOption {
	return func(g *Git) {
		g.dir = dir
	}
}

// WithGitVerbose tells Git that the runner already echoes command output
func WithGitVerbose(verbose bool) GitOption {
	return func(g *Git) {
		g.verbose = verbose
	}
}

// WithGitConsole sets the writer Status prints to. Default is os.Stdout
func WithGitConsole(w io.Writer) GitOption {
	return func(g *Git) {
		g.console = w
	}
}

// NewGit creates a new Git workflow over runner
func NewGit(runner interfaces.CommandRunner, opts ...GitOption) *Git {
	g := &Git{
		runner:  runner,
		console: os.Stdout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// In returns a copy of g bound to dir
func (g *Git) In(dir string) *Git {
	c := *g
	c.dir = dir
	return &c
}

// Dir returns the working directory of g. Empty means the runner's base directory
func (g *Git) Dir() string {
	return g.dir
}

func (g *Git) run(ctx context.Context, line string) (*model.CommandResult, error) {
	var opts []model.RunOption
	if g.dir != "" {
		opts = append(opts, model.WithDir(g.dir))
	}
	return g.runner.Run(ctx, line, opts...)
}

// IsGitRepo fails if the working directory is not a git repository
func (g *Git) IsGitRepo(ctx context.Context) error {
	if _, err := g.run(ctx, cmdline.ReadOnly("git rev-parse --git-dir")); err != nil {
		return goerr.Wrap(ErrNotGitRepo, "repository validation failed",
			goerr.V("dir", g.dir),
			goerr.V("cause", err.Error()),
		)
	}
	return nil
}

// IsWorkingDirClean fails if require is set and the working tree has uncommitted changes
func (g *Git) IsWorkingDirClean(ctx context.Context, require bool) error {
	if !require {
		return nil
	}

	if _, err := g.run(ctx, cmdline.ReadOnly("git diff-index --name-only HEAD --exit-code")); err != nil {
		return goerr.Wrap(ErrWorkingDirNotClean, "working directory validation failed",
			goerr.V("dir", g.dir),
			goerr.V("cause", err.Error()),
		)
	}
	return nil
}

// HasChanges records in state whether repo has uncommitted changes. It never fails.
func (g *Git) HasChanges(ctx context.Context, state *model.RunState, repo types.RepoLabel) {
	if _, err := g.run(ctx, cmdline.ReadOnly("git diff-index --name-only HEAD --exit-code")); err != nil {
		state.SetHasChanges(repo, true)
		return
	}

	state.SetHasChanges(repo, false)
	ctxlog.From(ctx).Warn(fmt.Sprintf("No changes in %s repo.", repo))
}

// RemoteURL returns remote.origin.url
func (g *Git) RemoteURL(ctx context.Context) (string, error) {
	result, err := g.run(ctx, cmdline.ReadOnly("git config --get remote.origin.url"))
	if err != nil {
		return "", goerr.Wrap(ErrNoRemoteURL, "failed to read remote URL", goerr.V("cause", err.Error()))
	}

	remote := strings.TrimSpace(result.Output)
	if remote == "" {
		return "", goerr.Wrap(ErrNoRemoteURL, "remote URL is empty")
	}
	return remote, nil
}

// Status prints the short status. In verbose mode the runner has already printed it.
func (g *Git) Status(ctx context.Context) error {
	result, err := g.run(ctx, cmdline.ReadOnly("git status --short --untracked-files=no"))
	if err != nil {
		return goerr.Wrap(err, "failed to get git status")
	}

	if !g.verbose && g.console != nil {
		if out := strings.TrimRight(result.Output, "\n"); out != "" {
			_, _ = fmt.Fprintln(g.console, out)
		}
	}
	return nil
}

// Clone clones the repository reference "url[#branch]" into dir, replacing dir.
// The branch defaults to master.
func (g *Git) Clone(ctx context.Context, ref, dir string) error {
	logger := ctxlog.From(ctx)

	url, branch := parseRepoRef(ref)

	if _, err := g.run(ctx, cmdline.Join("rm", "-rf", dir)); err != nil {
		logger.Error("Unable to remove clone target", "dir", dir, "error", err)
		return goerr.Wrap(err, "failed to remove clone target", goerr.V("dir", dir))
	}

	if _, err := g.run(ctx, cmdline.Join("git", "clone", url, "-b", branch, "--single-branch", dir)); err != nil {
		logger.Error(fmt.Sprintf("Unable to clone %s", ref))
		return goerr.Wrap(err, "failed to clone repository", goerr.V("url", url), goerr.V("branch", branch))
	}

	logger.Debug("Cloned repository", "url", url, "branch", branch, "dir", dir)
	return nil
}

func parseRepoRef(ref string) (url, branch string) {
	url, branch, found := strings.Cut(ref, "#")
	if !found || branch == "" {
		branch = types.DefaultBranch
	}
	return url, branch
}

// Stage adds files to the index. Empty input is a no-op and failures are logged only.
func (g *Git) Stage(ctx context.Context, files ...string) {
	var paths []string
	for _, f := range files {
		if f = strings.TrimSpace(f); f != "" {
			paths = append(paths, f)
		}
	}
	if len(paths) == 0 {
		return
	}

	args := append([]string{"git", "add"}, paths...)
	if _, err := g.run(ctx, cmdline.Join(args...)); err != nil {
		logger := ctxlog.From(ctx)
		logger.Debug("git add failed", "error", err)
		logger.Warn(fmt.Sprintf("Could not stage %s", strings.Join(paths, " ")))
	}
}

// StageDir adds everything under baseDir, including deletions. Failures are logged only.
func (g *Git) StageDir(ctx context.Context, baseDir string) {
	if baseDir == "" {
		baseDir = "."
	}

	if _, err := g.run(ctx, cmdline.Join("git", "add", baseDir, "--all")); err != nil {
		logger := ctxlog.From(ctx)
		logger.Debug("git add --all failed", "error", err)
		logger.Warn(fmt.Sprintf("Could not stage %s", baseDir))
	}
}

// Commit commits the staged changes with messageTemplate rendered for state.Version.
// With force an empty commit is allowed. A failed commit is logged and the latest
// existing commit will be tagged instead.
func (g *Git) Commit(ctx context.Context, state *model.RunState, messageTemplate string) {
	allowEmpty := ""
	if state.Force {
		allowEmpty = "--allow-empty"
	}
	message := tmpl.Version(messageTemplate, state.Version)

	if _, err := g.run(ctx, cmdline.Join("git", "commit", allowEmpty, "--message="+message)); err != nil {
		logger := ctxlog.From(ctx)
		logger.Debug("git commit failed", "error", err)
		logger.Warn("No changes to commit. The latest commit will be tagged.")
	}
}

// Tag creates an annotated tag and sets state.TagSet on success. With force an
// existing tag is moved. Failure is logged only.
func (g *Git) Tag(ctx context.Context, state *model.RunState, tagTemplate, annotationTemplate string) {
	force := ""
	if state.Force {
		force = "--force"
	}
	tagName := tmpl.Version(tagTemplate, state.Version)
	message := tmpl.Version(annotationTemplate, state.Version)

	if _, err := g.run(ctx, cmdline.Join("git", "tag", force, "--annotate", "--message="+message, tagName)); err != nil {
		logger := ctxlog.From(ctx)
		logger.Debug("git tag failed", "error", err)
		logger.Warn(fmt.Sprintf("Could not tag. Does tag %q already exist? Use --force to move a tag.", tagName))
		return
	}

	state.TagSet = true
}

// LatestTag returns the most recent tag reachable from HEAD, or "" if there is none
func (g *Git) LatestTag(ctx context.Context) (string, error) {
	result, err := g.run(ctx, cmdline.ReadOnly("git describe --tags --abbrev=0"))
	if err != nil {
		if model.ExitCode(err) < 0 {
			return "", goerr.Wrap(err, "failed to run git describe")
		}
		ctxlog.From(ctx).Debug("No tag found", "error", err)
		return "", nil
	}

	return strings.TrimSpace(result.Output), nil
}

// TagExists reports whether refs/tags/<tag> exists
func (g *Git) TagExists(ctx context.Context, tag string) (bool, error) {
	_, err := g.run(ctx, cmdline.ReadOnly(cmdline.Join("git", "show-ref", "--tags", "--quiet", "--verify", "--", "refs/tags/"+tag)))
	if err == nil {
		return true, nil
	}
	if model.ExitCode(err) == 1 {
		return false, nil
	}
	return false, goerr.Wrap(err, "failed to check tag", goerr.V("tag", tag))
}

// Push pushes the current branch to pushURL, or to the configured upstream if empty
func (g *Git) Push(ctx context.Context, remoteURL, pushURL string) error {
	if _, err := g.run(ctx, cmdline.Join("git", "push", pushURL)); err != nil {
		ctxlog.From(ctx).Error("Please make sure an upstream remote repository is configured for the current branch. Example commands:\n" +
			fmt.Sprintf("git remote add origin %s\n", remoteURL) +
			"git push --set-upstream origin master")
		return goerr.Wrap(err, "failed to push", goerr.V("push_url", pushURL))
	}
	return nil
}

// PushTags pushes with --follow-tags. Failure is logged only, rerunning with force recovers.
func (g *Git) PushTags(ctx context.Context, state *model.RunState, pushURL string) {
	force := ""
	if state.Force {
		force = "--force"
	}

	if _, err := g.run(ctx, cmdline.Join("git", "push", "--follow-tags", force, pushURL)); err != nil {
		logger := ctxlog.From(ctx)
		logger.Debug("git push --follow-tags failed", "error", err)
		logger.Error(fmt.Sprintf("Could not push tag(s). Does tag %q already exist? Use --force to move a tag.", state.Version))
	}
}

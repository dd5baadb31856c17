package usecase

import (
	"context"
	"path"
	"path/filepath"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/shipit/pkg/domain/interfaces"
	"github.com/m-mizutani/shipit/pkg/domain/model"
	"github.com/m-mizutani/shipit/pkg/domain/types"
	"github.com/m-mizutani/shipit/pkg/utils/cmdline"
	"github.com/m-mizutani/shipit/pkg/utils/tmpl"
)

// WorkflowConfig holds the templates and switches of one release run
type WorkflowConfig struct {
	RemoteURL       string // resolved from remote.origin.url if empty
	PushURL         string // empty pushes to the configured upstream
	PreviousVersion string // resolved from the latest tag if empty

	RequireCleanWorkingDir bool
	StageFiles             []string
	StageAll               bool

	CommitMessage string
	TagName       string
	TagAnnotation string

	Assets string

	Dist *DistConfig // nil disables the companion repository flow
}

// DistConfig describes the companion repository receiving the build output
type DistConfig struct {
	Repo          string // "url[#branch]"
	StageDir      string // clone target
	BaseDir       string // directory the files are copied from
	Files         string // glob relative to BaseDir
	CommitMessage string
	TagName       string
	TagAnnotation string
	PushURL       string
}

// Workflow runs the whole release
type Workflow struct {
	git       *Git
	changelog *Changelog
	publisher *Publisher
	finder    interfaces.AssetFinder
	notifier  interfaces.Notifier
	cfg       WorkflowConfig
	dryRun    bool
	force     bool
}

var _ interfaces.ReleaseWorkflow = (*Workflow)(nil)

// WorkflowOption is a functional option for Workflow
type WorkflowOption func(*Workflow)

// WithChangelog sets the changelog generator
func WithChangelog(c *Changelog) WorkflowOption {
	return func(w *Workflow) {
		w.changelog = c
	}
}

// WithPublisher enables the remote release
func WithPublisher(p *Publisher) WorkflowOption {
	return func(w *Workflow) {
		w.publisher = p
	}
}

// WithFinder sets the finder resolving the files of the companion repository
func WithFinder(f interfaces.AssetFinder) WorkflowOption {
	return func(w *Workflow) {
		w.finder = f
	}
}

// WithNotifier announces the release when the workflow completed
func WithNotifier(n interfaces.Notifier) WorkflowOption {
	return func(w *Workflow) {
		w.notifier = n
	}
}

// WithDryRun marks the state of every run as dry-run. The runner decides what is skipped.
func WithDryRun(dryRun bool) WorkflowOption {
	return func(w *Workflow) {
		w.dryRun = dryRun
	}
}

// WithForce allows empty commits and moves existing tags
func WithForce(force bool) WorkflowOption {
	return func(w *Workflow) {
		w.force = force
	}
}

// NewWorkflow creates a Workflow over git
func NewWorkflow(git *Git, cfg WorkflowConfig, opts ...WorkflowOption) *Workflow {
	w := &Workflow{
		git: git,
		cfg: cfg,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run releases version. Steps run strictly in order and share one RunState.
func (w *Workflow) Run(ctx context.Context, version string) error {
	logger := ctxlog.From(ctx)
	state := model.NewRunState(w.dryRun, w.force)

	if err := w.git.IsGitRepo(ctx); err != nil {
		return err
	}
	if err := w.git.IsWorkingDirClean(ctx, w.cfg.RequireCleanWorkingDir); err != nil {
		return err
	}

	remoteURL := w.cfg.RemoteURL
	if remoteURL == "" {
		url, err := w.git.RemoteURL(ctx)
		if err != nil {
			return err
		}
		remoteURL = url
	}

	previous, err := w.previousVersion(ctx)
	if err != nil {
		return err
	}
	state.PreviousVersion = previous

	resolved, err := ResolveVersion(version, previous)
	if err != nil {
		return err
	}
	state.Version = resolved

	logger.Info("Start release",
		"version", state.Version,
		"previous_version", state.PreviousVersion,
		"remote", remoteURL,
		"dry_run", state.DryRun,
	)

	if w.changelog != nil {
		if err := w.changelog.Generate(ctx, state); err != nil {
			return err
		}
	}

	w.git.HasChanges(ctx, state, types.RepoSource)
	w.git.Stage(ctx, w.cfg.StageFiles...)
	if w.cfg.StageAll {
		w.git.StageDir(ctx, ".")
	}
	if err := w.git.Status(ctx); err != nil {
		logger.Warn("Could not show git status", "error", err)
	}

	w.git.Commit(ctx, state, w.cfg.CommitMessage)
	w.git.Tag(ctx, state, w.cfg.TagName, w.cfg.TagAnnotation)

	if err := w.git.Push(ctx, remoteURL, w.cfg.PushURL); err != nil {
		return err
	}
	if state.TagSet || state.Force {
		w.git.PushTags(ctx, state, w.cfg.PushURL)
	}

	if w.publisher != nil {
		if err := w.publisher.Release(ctx, state, remoteURL); err != nil {
			return err
		}
		if err := w.publisher.UploadAssets(ctx, state, remoteURL, w.cfg.Assets); err != nil {
			return err
		}
	}

	if w.cfg.Dist != nil && w.cfg.Dist.Repo != "" {
		if err := w.releaseDist(ctx, state); err != nil {
			return err
		}
	}

	if w.notifier != nil {
		w.notify(ctx, state, remoteURL)
	}

	logger.Info("Workflow completed",
		"version", state.Version,
		"release_url", state.ReleaseURL,
		"dry_run", state.DryRun,
	)
	return nil
}

// previousVersion returns the configured previous version or the one of the latest tag
func (w *Workflow) previousVersion(ctx context.Context) (string, error) {
	if w.cfg.PreviousVersion != "" {
		return w.cfg.PreviousVersion, nil
	}

	tag, err := w.git.LatestTag(ctx)
	if err != nil {
		return "", err
	}
	if tag == "" {
		return "", nil
	}

	if v, ok := tmpl.ExtractVersion(w.cfg.TagName, tag); ok {
		return v, nil
	}
	ctxlog.From(ctx).Warn("Latest tag does not fit the tag name template, using it as is",
		"tag", tag,
		"template", w.cfg.TagName,
	)
	return tag, nil
}

// releaseDist clones the companion repository, copies the build output into it and
// commits, tags and pushes it with its own templates.
func (w *Workflow) releaseDist(ctx context.Context, state *model.RunState) error {
	dist := w.cfg.Dist
	logger := ctxlog.From(ctx)

	if w.finder == nil {
		return goerr.New("no file finder for companion repository", goerr.V("repo", dist.Repo))
	}

	if err := w.git.Clone(ctx, dist.Repo, dist.StageDir); err != nil {
		return err
	}

	files, err := w.finder.Find(path.Join(filepath.ToSlash(dist.BaseDir), dist.Files))
	if err != nil {
		return goerr.Wrap(err, "failed to resolve dist files", goerr.V("base_dir", dist.BaseDir))
	}
	if len(files) == 0 {
		logger.Warn("No dist files found", "base_dir", dist.BaseDir, "files", dist.Files)
	}

	for _, file := range files {
		if err := w.copyDistFile(ctx, file); err != nil {
			return err
		}
	}

	distGit := w.git.In(dist.StageDir)
	distGit.HasChanges(ctx, state, types.RepoDist)
	distGit.StageDir(ctx, ".")
	distGit.Commit(ctx, state, dist.CommitMessage)
	distGit.Tag(ctx, state, dist.TagName, dist.TagAnnotation)

	if err := distGit.Push(ctx, dist.Repo, dist.PushURL); err != nil {
		return err
	}
	if state.TagSet || state.Force {
		distGit.PushTags(ctx, state, dist.PushURL)
	}

	logger.Info("Released companion repository", "repo", dist.Repo, "files", len(files))
	return nil
}

func (w *Workflow) copyDistFile(ctx context.Context, file string) error {
	dist := w.cfg.Dist

	rel, err := filepath.Rel(dist.BaseDir, file)
	if err != nil {
		return goerr.Wrap(err, "dist file is outside of base dir", goerr.V("file", file), goerr.V("base_dir", dist.BaseDir))
	}
	dest := filepath.Join(dist.StageDir, rel)

	if _, err := w.git.run(ctx, cmdline.Join("mkdir", "-p", filepath.Dir(dest))); err != nil {
		return goerr.Wrap(err, "failed to create dist directory", goerr.V("dir", filepath.Dir(dest)))
	}
	if _, err := w.git.run(ctx, cmdline.Join("cp", file, dest)); err != nil {
		return goerr.Wrap(err, "failed to copy dist file", goerr.V("file", file), goerr.V("dest", dest))
	}
	return nil
}

func (w *Workflow) notify(ctx context.Context, state *model.RunState, remoteURL string) {
	logger := ctxlog.From(ctx)

	repo, err := model.ParseRepo(remoteURL)
	if err != nil {
		logger.Warn("Skip notification, can not resolve repository", "error", err)
		return
	}

	if state.DryRun {
		logger.Info("dry-run: skip notification", "repository", repo.Repository)
		return
	}

	if err := w.notifier.Notify(ctx, repo, state); err != nil {
		logger.Warn("Failed to notify release", "error", err)
	}
}

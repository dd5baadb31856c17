package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/shipit/pkg/domain/interfaces"
	"github.com/m-mizutani/shipit/pkg/domain/model"
	"github.com/m-mizutani/shipit/pkg/utils/async"
	"github.com/m-mizutani/shipit/pkg/utils/tmpl"
)

// ReleaseConfig holds the templates and flags of the remote release
type ReleaseConfig struct {
	TagName     string // tag name template, e.g. "v%s"
	ReleaseName string // release name template, e.g. "Release %s"
	Draft       bool
	Prerelease  bool
}

// Publisher creates the remote release and uploads its assets
type Publisher struct {
	client interfaces.ReleaseClient
	finder interfaces.AssetFinder
	cfg    ReleaseConfig
}

// NewPublisher creates a Publisher. client is expected to be already decorated
// with retry, see NewRetryReleaseClient.
func NewPublisher(client interfaces.ReleaseClient, finder interfaces.AssetFinder, cfg ReleaseConfig) *Publisher {
	return &Publisher{
		client: client,
		finder: finder,
		cfg:    cfg,
	}
}

// Release creates the release of state.Version with state.Changelog as body and
// stores the created release ID in state. Skipped in dry-run mode.
func (p *Publisher) Release(ctx context.Context, state *model.RunState, remoteURL string) error {
	logger := ctxlog.From(ctx)

	repo, err := model.ParseRepo(remoteURL)
	if err != nil {
		return goerr.Wrap(err, "failed to resolve repository of release")
	}

	req := &model.ReleaseRequest{
		TagName:    tmpl.Version(p.cfg.TagName, state.Version),
		Name:       tmpl.Version(p.cfg.ReleaseName, state.Version),
		Body:       state.Changelog,
		Draft:      p.cfg.Draft,
		Prerelease: p.cfg.Prerelease,
	}

	logger.Info("Creating release (start)",
		"repository", repo.Repository,
		"owner", repo.Owner,
		"project", repo.Project,
		"tag_name", req.TagName,
	)

	if state.DryRun {
		logger.Info("dry-run: skip creating release", "tag_name", req.TagName, "name", req.Name)
		return nil
	}

	release, err := p.client.CreateRelease(ctx, repo, req)
	if err != nil {
		return err
	}

	state.ReleaseID = release.ID
	state.ReleaseURL = release.HTMLURL

	logger.Info("Creating release (success)",
		"url", release.HTMLURL,
		"tag_name", release.TagName,
		"name", release.Name,
	)
	logger.Debug("Created release", "release", release)

	return nil
}

// UploadAssets uploads every file matching pattern to the release in state.ReleaseID.
// The pattern is resolved on each call; no match is not an error. Uploads run
// concurrently and any failure fails the whole batch.
func (p *Publisher) UploadAssets(ctx context.Context, state *model.RunState, remoteURL, pattern string) error {
	if pattern == "" {
		return nil
	}
	logger := ctxlog.From(ctx)

	repo, err := model.ParseRepo(remoteURL)
	if err != nil {
		return goerr.Wrap(err, "failed to resolve repository of release")
	}

	logger.Info("Uploading assets (start)",
		"repository", repo.Repository,
		"owner", repo.Owner,
		"project", repo.Project,
	)

	files, err := p.finder.Find(pattern)
	if err != nil {
		return goerr.Wrap(err, "failed to resolve assets", goerr.V("pattern", pattern))
	}

	if len(files) == 0 {
		logger.Info("No assets found", "pattern", pattern)
		return nil
	}

	if state.DryRun {
		for _, file := range files {
			logger.Info("dry-run: skip uploading asset", "path", file)
		}
		return nil
	}

	if state.ReleaseID == 0 {
		return goerr.New("release is not created yet, can not upload assets", goerr.V("pattern", pattern))
	}

	tasks := make([]async.Task, 0, len(files))
	for _, file := range files {
		tasks = append(tasks, func(ctx context.Context) error {
			asset, err := p.client.UploadAsset(ctx, repo, state.ReleaseID, file)
			if err != nil {
				return err
			}
			ctxlog.From(ctx).Info("Uploading asset (success)", "name", asset.Name, "url", asset.URL)
			return nil
		})
	}

	if err := async.Wait(ctx, tasks...); err != nil {
		return goerr.Wrap(err, "failed to upload assets", goerr.V("count", len(files)))
	}
	return nil
}

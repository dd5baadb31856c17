package interfaces

import (
	"context"

	"github.com/m-mizutani/shipit/pkg/domain/model"
)

// ReleaseClient defines operations for publishing releases to GitHub
type ReleaseClient interface {
	// CreateRelease creates a release for an existing tag
	CreateRelease(ctx context.Context, repo *model.RepoIdentity, req *model.ReleaseRequest) (*model.Release, error)

	// UploadAsset uploads a local file to the release addressed by releaseID
	UploadAsset(ctx context.Context, repo *model.RepoIdentity, releaseID int64, filePath string) (*model.Asset, error)
}

package interfaces

import (
	"context"

	"github.com/m-mizutani/shipit/pkg/domain/model"
)

// Notifier announces a finished release
type Notifier interface {
	Notify(ctx context.Context, repo *model.RepoIdentity, state *model.RunState) error
}

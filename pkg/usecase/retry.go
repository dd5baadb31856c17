package usecase

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/shipit/pkg/domain/interfaces"
	"github.com/m-mizutani/shipit/pkg/domain/model"
)

// DefaultReleaseAttempts is the number of CreateRelease attempts including the first one
const DefaultReleaseAttempts = 3

// RetryError is returned when every attempt failed. Err is the error of the last attempt.
type RetryError struct {
	Attempts int
	Err      error
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RetryError) Unwrap() error {
	return e.Err
}

type retryReleaseClient struct {
	client     interfaces.ReleaseClient
	attempts   int
	newBackOff func() backoff.BackOff
}

// RetryOption is a functional option for NewRetryReleaseClient
type RetryOption func(*retryReleaseClient)

// WithAttempts sets the total number of attempts
func WithAttempts(n int) RetryOption {
	return func(c *retryReleaseClient) {
		if n > 0 {
			c.attempts = n
		}
	}
}

// WithBackOff sets the backoff policy factory. Default is backoff.NewExponentialBackOff
func WithBackOff(f func() backoff.BackOff) RetryOption {
	return func(c *retryReleaseClient) {
		c.newBackOff = f
	}
}

// NewRetryReleaseClient decorates client so that CreateRelease is retried with backoff.
// UploadAsset is passed through.
func NewRetryReleaseClient(client interfaces.ReleaseClient, opts ...RetryOption) interfaces.ReleaseClient {
	c := &retryReleaseClient{
		client:   client,
		attempts: DefaultReleaseAttempts,
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateRelease calls the wrapped client until it succeeds or the attempts are exhausted
func (c *retryReleaseClient) CreateRelease(ctx context.Context, repo *model.RepoIdentity, req *model.ReleaseRequest) (*model.Release, error) {
	logger := ctxlog.From(ctx)

	var release *model.Release
	attempt := 0

	op := func() error {
		attempt++
		r, err := c.client.CreateRelease(ctx, repo, req)
		if err != nil {
			logFn := logger.Warn
			if attempt >= c.attempts {
				logFn = logger.Error
			}
			logFn(fmt.Sprintf("Failed to create release (Attempt %d of %d)", attempt, c.attempts),
				"error", err,
				"repository", repo.Repository,
			)
			return err
		}
		release = r
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), uint64(c.attempts-1)), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, goerr.Wrap(&RetryError{Attempts: attempt, Err: err}, "failed to create release",
			goerr.V("attempts", attempt),
			goerr.V("repository", repo.Repository),
		)
	}

	return release, nil
}

func (c *retryReleaseClient) UploadAsset(ctx context.Context, repo *model.RepoIdentity, releaseID int64, filePath string) (*model.Asset, error) {
	return c.client.UploadAsset(ctx, repo, releaseID, filePath)
}

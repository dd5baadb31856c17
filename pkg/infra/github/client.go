package github

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/shipit/pkg/domain/interfaces"
	"github.com/m-mizutani/shipit/pkg/domain/model"
	"github.com/m-mizutani/shipit/pkg/domain/types"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "shipit"
)

type client struct {
	githubClient *github.Client
}

var _ interfaces.ReleaseClient = (*client)(nil)

// AppCredential holds GitHub App installation credentials
type AppCredential struct {
	AppID          int64
	InstallationID int64
	PrivateKey     []byte
}

type config struct {
	host      string
	apiURL    string
	token     string
	app       *AppCredential
	timeout   time.Duration
	transport http.RoundTripper
}

// Option is a functional option for the GitHub client
type Option func(*config)

// WithToken authenticates requests with a personal access or OAuth token
func WithToken(token string) Option {
	return func(c *config) {
		c.token = token
	}
}

// WithApp authenticates requests as a GitHub App installation. It takes precedence over WithToken.
func WithApp(cred *AppCredential) Option {
	return func(c *config) {
		c.app = cred
	}
}

// WithAPIURL overrides the server root. The enterprise API layout (/api/v3/, /api/uploads/) is used under it.
func WithAPIURL(rawURL string) Option {
	return func(c *config) {
		c.apiURL = strings.TrimRight(rawURL, "/")
	}
}

// WithTimeout sets the request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithTransport sets the base HTTP transport
func WithTransport(tr http.RoundTripper) Option {
	return func(c *config) {
		c.transport = tr
	}
}

// NewClient creates a GitHub client for host. An empty host or github.com uses the
// public API; any other host is treated as GitHub Enterprise at https://<host>/api/v3/.
// Without credentials the client is unauthenticated and the API rejects release calls.
func NewClient(host string, opts ...Option) (interfaces.ReleaseClient, error) {
	cfg := &config{
		host:      host,
		timeout:   defaultTimeout,
		transport: http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	root := cfg.apiURL
	if root == "" && cfg.host != "" && cfg.host != types.PublicGitHubHost {
		root = "https://" + cfg.host
	}

	transport := cfg.transport
	if cfg.app != nil {
		itr, err := ghinstallation.New(transport, cfg.app.AppID, cfg.app.InstallationID, cfg.app.PrivateKey)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create GitHub App transport")
		}
		if root != "" {
			itr.BaseURL = root + "/api/v3"
		}
		transport = itr
	}

	githubClient := github.NewClient(&http.Client{
		Transport: transport,
		Timeout:   cfg.timeout,
	})
	githubClient.UserAgent = defaultUserAgent + "/" + types.Version

	if cfg.app == nil && cfg.token != "" {
		githubClient = githubClient.WithAuthToken(cfg.token)
	}

	if root != "" {
		enterprise, err := githubClient.WithEnterpriseURLs(root+"/api/v3/", root+"/api/uploads/")
		if err != nil {
			return nil, goerr.Wrap(err, "failed to set GitHub Enterprise URLs", goerr.V("root", root))
		}
		githubClient = enterprise
	}

	return &client{
		githubClient: githubClient,
	}, nil
}

// CreateRelease creates a release
func (c *client) CreateRelease(ctx context.Context, repo *model.RepoIdentity, req *model.ReleaseRequest) (*model.Release, error) {
	release, _, err := c.githubClient.Repositories.CreateRelease(ctx, repo.Owner, repo.Project, &github.RepositoryRelease{
		TagName:    github.Ptr(req.TagName),
		Name:       github.Ptr(req.Name),
		Body:       github.Ptr(req.Body),
		Draft:      github.Ptr(req.Draft),
		Prerelease: github.Ptr(req.Prerelease),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create release",
			goerr.V("repository", repo.Repository),
			goerr.V("tag_name", req.TagName),
		)
	}

	return &model.Release{
		ID:      release.GetID(),
		TagName: release.GetTagName(),
		Name:    release.GetName(),
		HTMLURL: release.GetHTMLURL(),
	}, nil
}

// UploadAsset uploads a file to the release, named by the base name of filePath
func (c *client) UploadAsset(ctx context.Context, repo *model.RepoIdentity, releaseID int64, filePath string) (*model.Asset, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open asset", goerr.V("path", filePath))
	}
	defer file.Close()

	name := filepath.Base(filePath)
	asset, _, err := c.githubClient.Repositories.UploadReleaseAsset(ctx, repo.Owner, repo.Project, releaseID,
		&github.UploadOptions{Name: name}, file)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to upload asset",
			goerr.V("repository", repo.Repository),
			goerr.V("release_id", releaseID),
			goerr.V("name", name),
		)
	}

	return &model.Asset{
		Name: asset.GetName(),
		URL:  asset.GetBrowserDownloadURL(),
	}, nil
}

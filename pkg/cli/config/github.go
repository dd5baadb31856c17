package config

import (
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/shipit/pkg/domain/types"
	"github.com/m-mizutani/shipit/pkg/infra/github"
	"github.com/m-mizutani/shipit/pkg/usecase"
)

// GitHub holds configuration of the GitHub release
type GitHub struct {
	Release     bool
	ReleaseName string
	Draft       bool
	Prerelease  bool
	Assets      string

	TokenRef string
	APIURL   string
	Timeout  time.Duration
	Attempts int

	AppID          int64
	InstallationID int64
	PrivateKey     string `masq:"secret"`
	PrivateKeyFile string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "github-release",
			Usage:       "Create a GitHub release",
			Destination: &c.Release,
			Sources:     cli.EnvVars("SHIPIT_GITHUB_RELEASE"),
		},
		&cli.StringFlag{
			Name:        "github-release-name",
			Usage:       "Release name template",
			Value:       "Release %s",
			Destination: &c.ReleaseName,
			Sources:     cli.EnvVars("SHIPIT_GITHUB_RELEASE_NAME"),
		},
		&cli.BoolFlag{
			Name:        "github-draft",
			Usage:       "Create the release as draft",
			Destination: &c.Draft,
			Sources:     cli.EnvVars("SHIPIT_GITHUB_DRAFT"),
		},
		&cli.BoolFlag{
			Name:        "github-prerelease",
			Usage:       "Mark the release as pre-release",
			Destination: &c.Prerelease,
			Sources:     cli.EnvVars("SHIPIT_GITHUB_PRERELEASE"),
		},
		&cli.StringFlag{
			Name:        "github-assets",
			Usage:       "Glob pattern of files to upload to the release",
			Destination: &c.Assets,
			Sources:     cli.EnvVars("SHIPIT_GITHUB_ASSETS"),
		},
		&cli.StringFlag{
			Name:        "github-token-ref",
			Usage:       "Name of the environment variable holding the GitHub token",
			Value:       types.DefaultTokenRef,
			Destination: &c.TokenRef,
			Sources:     cli.EnvVars("SHIPIT_GITHUB_TOKEN_REF"),
		},
		&cli.StringFlag{
			Name:        "github-api-url",
			Usage:       "GitHub Enterprise server URL (default: derived from the remote host)",
			Destination: &c.APIURL,
			Sources:     cli.EnvVars("SHIPIT_GITHUB_API_URL"),
		},
		&cli.DurationFlag{
			Name:        "github-timeout",
			Usage:       "Timeout of each GitHub API request",
			Value:       10 * time.Second,
			Destination: &c.Timeout,
			Sources:     cli.EnvVars("SHIPIT_GITHUB_TIMEOUT"),
		},
		&cli.IntFlag{
			Name:        "github-attempts",
			Usage:       "Number of attempts to create the release",
			Value:       usecase.DefaultReleaseAttempts,
			Destination: &c.Attempts,
			Sources:     cli.EnvVars("SHIPIT_GITHUB_ATTEMPTS"),
		},
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID, used instead of the token when set",
			Destination: &c.AppID,
			Sources:     cli.EnvVars("SHIPIT_GITHUB_APP_ID"),
		},
		&cli.Int64Flag{
			Name:        "github-app-installation-id",
			Usage:       "GitHub App installation ID",
			Destination: &c.InstallationID,
			Sources:     cli.EnvVars("SHIPIT_GITHUB_APP_INSTALLATION_ID"),
		},
		&cli.StringFlag{
			Name:        "github-app-private-key",
			Usage:       "GitHub App private key (PEM)",
			Destination: &c.PrivateKey,
			Sources:     cli.EnvVars("SHIPIT_GITHUB_APP_PRIVATE_KEY"),
		},
		&cli.StringFlag{
			Name:        "github-app-private-key-file",
			Usage:       "Path to the GitHub App private key (PEM)",
			Destination: &c.PrivateKeyFile,
			Sources:     cli.EnvVars("SHIPIT_GITHUB_APP_PRIVATE_KEY_FILE"),
		},
	}
}

// Token returns the token from the environment variable named by TokenRef
func (c *GitHub) Token() string {
	ref := c.TokenRef
	if ref == "" {
		ref = types.DefaultTokenRef
	}
	return os.Getenv(ref)
}

// AppCredential returns the GitHub App credential, or nil if no App is configured
func (c *GitHub) AppCredential() (*github.AppCredential, error) {
	if c.AppID == 0 {
		return nil, nil
	}
	if c.InstallationID == 0 {
		return nil, goerr.New("GitHub App installation ID is required", goerr.V("app_id", c.AppID))
	}

	key := []byte(c.PrivateKey)
	if len(key) == 0 && c.PrivateKeyFile != "" {
		data, err := os.ReadFile(c.PrivateKeyFile)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read GitHub App private key", goerr.V("path", c.PrivateKeyFile))
		}
		key = data
	}
	if len(key) == 0 {
		return nil, goerr.New("GitHub App private key is required", goerr.V("app_id", c.AppID))
	}

	return &github.AppCredential{
		AppID:          c.AppID,
		InstallationID: c.InstallationID,
		PrivateKey:     key,
	}, nil
}

// ClientOptions returns the options of github.NewClient
func (c *GitHub) ClientOptions() ([]github.Option, error) {
	var opts []github.Option
	if c.Timeout > 0 {
		opts = append(opts, github.WithTimeout(c.Timeout))
	}
	if c.APIURL != "" {
		opts = append(opts, github.WithAPIURL(c.APIURL))
	}

	cred, err := c.AppCredential()
	if err != nil {
		return nil, err
	}
	if cred != nil {
		return append(opts, github.WithApp(cred)), nil
	}

	if token := c.Token(); token != "" {
		opts = append(opts, github.WithToken(token))
	}
	return opts, nil
}

// ReleaseConfig converts the configuration for usecase.Publisher. The tag name
// template is shared with the git configuration.
func (c *GitHub) ReleaseConfig(tagName string) usecase.ReleaseConfig {
	return usecase.ReleaseConfig{
		TagName:     tagName,
		ReleaseName: c.ReleaseName,
		Draft:       c.Draft,
		Prerelease:  c.Prerelease,
	}
}

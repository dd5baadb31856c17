package types

// Version is the version of shipit itself. Overwritten by -ldflags at build time.
var Version = "dev"

const (
	// DefaultTokenRef is the name of the environment variable holding the GitHub token
	DefaultTokenRef = "GITHUB_TOKEN"

	// DefaultBranch is used when a companion repository reference has no #branch suffix
	DefaultBranch = "master"

	// PublicGitHubHost is the host name of github.com. Any other host is treated as GitHub Enterprise.
	PublicGitHubHost = "github.com"

	// RevRangePlaceholder is replaced by "<previous tag>...HEAD" in the changelog command
	RevRangePlaceholder = "[REV_RANGE]"
)

// RepoLabel identifies a repository handled in one run, used as key of the "has changes" flags
type RepoLabel string

const (
	RepoSource RepoLabel = "src"
	RepoDist   RepoLabel = "dist"
)

package model

import (
	"strings"

	giturls "github.com/chainguard-dev/git-urls"
	"github.com/m-mizutani/goerr/v2"
)

// RepoIdentity is the structured identity of a git remote
type RepoIdentity struct {
	Host       string // e.g. "github.com" or a GitHub Enterprise host
	Owner      string
	Project    string
	Repository string // Owner + "/" + Project
	Remote     string // original remote URL
}

// ParseRepo parses a remote URL in SSH (scp-like or ssh://) or HTTPS form into a RepoIdentity.
// Owner and project are the last two path segments; the project keeps any '.' in its name.
func ParseRepo(remoteURL string) (*RepoIdentity, error) {
	remote := strings.TrimSpace(remoteURL)
	if remote == "" {
		return nil, goerr.New("remote URL is empty")
	}

	u, err := giturls.Parse(remote)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse remote URL", goerr.V("remote", remoteURL))
	}
	if u.Hostname() == "" {
		return nil, goerr.New("no host in remote URL", goerr.V("remote", remoteURL))
	}

	path := strings.TrimSuffix(strings.Trim(u.Path, "/"), ".git")
	segments := strings.Split(path, "/")
	if len(segments) < 2 {
		return nil, goerr.New("can not find owner/project in remote URL", goerr.V("remote", remoteURL))
	}
	owner, project := segments[len(segments)-2], segments[len(segments)-1]
	if owner == "" || project == "" {
		return nil, goerr.New("can not find owner/project in remote URL", goerr.V("remote", remoteURL))
	}

	return &RepoIdentity{
		Host:       u.Hostname(),
		Owner:      owner,
		Project:    project,
		Repository: owner + "/" + project,
		Remote:     remoteURL,
	}, nil
}

package model

import "github.com/m-mizutani/shipit/pkg/domain/types"

// RunState holds values computed by one workflow step and consumed by a later one.
// It is created once per run and passed by pointer through the sequential steps;
// nothing is reset between steps and it is never persisted.
type RunState struct {
	// Version is the version being released. Written by version resolution, read by commit, tag and release.
	Version string

	// PreviousVersion is the version of the latest tag. Written from Git.LatestTag, read by Changelog.
	PreviousVersion string

	// Changelog is the output of the changelog command. Written by Changelog, read by Publisher.Release.
	Changelog string

	// ReleaseID addresses the created release for asset upload. Written by Publisher.Release.
	ReleaseID  int64
	ReleaseURL string

	// TagSet is true once Git.Tag succeeded. Read by the workflow to decide whether tags are pushed.
	TagSet bool

	// HasChanges is written by Git.HasChanges per repository. Advisory only.
	HasChanges map[types.RepoLabel]bool

	DryRun bool
	Force  bool
}

// NewRunState creates an empty state for one release run
func NewRunState(dryRun, force bool) *RunState {
	return &RunState{
		HasChanges: make(map[types.RepoLabel]bool),
		DryRun:     dryRun,
		Force:      force,
	}
}

// SetHasChanges records whether the repository had uncommitted changes
func (s *RunState) SetHasChanges(repo types.RepoLabel, changed bool) {
	if s.HasChanges == nil {
		s.HasChanges = make(map[types.RepoLabel]bool)
	}
	s.HasChanges[repo] = changed
}

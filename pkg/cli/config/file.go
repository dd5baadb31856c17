package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
)

// DefaultConfigFile is read when present and no other file is given
const DefaultConfigFile = ".shipit.toml"

// FlagState tells whether a flag was given on the command line or by environment variable.
// *cli.Command satisfies it.
type FlagState interface {
	IsSet(name string) bool
}

// File is the layout of the TOML configuration file. Values apply only to flags that are not set.
type File struct {
	Git    GitFile    `toml:"git"`
	GitHub GitHubFile `toml:"github"`
	Dist   DistFile   `toml:"dist"`
	Slack  SlackFile  `toml:"slack"`
}

type GitFile struct {
	RequireCleanWorkingDir *bool    `toml:"require_clean_working_dir"`
	PushRepo               *string  `toml:"push_repo"`
	CommitMessage          *string  `toml:"commit_message"`
	TagName                *string  `toml:"tag_name"`
	TagAnnotation          *string  `toml:"tag_annotation"`
	ChangelogCommand       *string  `toml:"changelog_command"`
	StageFiles             []string `toml:"stage_files"`
	StageAll               *bool    `toml:"stage_all"`
}

type GitHubFile struct {
	Release     *bool   `toml:"release"`
	ReleaseName *string `toml:"release_name"`
	Draft       *bool   `toml:"draft"`
	Prerelease  *bool   `toml:"prerelease"`
	Assets      *string `toml:"assets"`
	TokenRef    *string `toml:"token_ref"`
	APIURL      *string `toml:"api_url"`
}

type DistFile struct {
	Repo          *string `toml:"repo"`
	StageDir      *string `toml:"stage_dir"`
	BaseDir       *string `toml:"base_dir"`
	Files         *string `toml:"files"`
	CommitMessage *string `toml:"commit_message"`
	TagName       *string `toml:"tag_name"`
	TagAnnotation *string `toml:"tag_annotation"`
	PushRepo      *string `toml:"push_repo"`
}

type SlackFile struct {
	Channel *string `toml:"channel"`
}

// LoadFile reads the configuration file at path. A missing file is an error only when required.
func LoadFile(path string, required bool) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return &File{}, nil
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}

	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, goerr.Wrap(err, "failed to parse config file", goerr.V("path", path))
	}
	return &f, nil
}

func setValue[T any](flags FlagState, name string, dst *T, v *T) {
	if v != nil && !flags.IsSet(name) {
		*dst = *v
	}
}

// Apply copies file values into c for every flag not set in flags
func (f *GitFile) Apply(flags FlagState, c *Git) {
	setValue(flags, "require-clean", &c.RequireCleanWorkingDir, f.RequireCleanWorkingDir)
	setValue(flags, "push-repo", &c.PushRepo, f.PushRepo)
	setValue(flags, "commit-message", &c.CommitMessage, f.CommitMessage)
	setValue(flags, "tag-name", &c.TagName, f.TagName)
	setValue(flags, "tag-annotation", &c.TagAnnotation, f.TagAnnotation)
	setValue(flags, "changelog-command", &c.ChangelogCommand, f.ChangelogCommand)
	setValue(flags, "stage-all", &c.StageAll, f.StageAll)
	if len(f.StageFiles) > 0 && !flags.IsSet("stage") {
		c.StageFiles = f.StageFiles
	}
}

// Apply copies file values into c for every flag not set in flags
func (f *GitHubFile) Apply(flags FlagState, c *GitHub) {
	setValue(flags, "github-release", &c.Release, f.Release)
	setValue(flags, "github-release-name", &c.ReleaseName, f.ReleaseName)
	setValue(flags, "github-draft", &c.Draft, f.Draft)
	setValue(flags, "github-prerelease", &c.Prerelease, f.Prerelease)
	setValue(flags, "github-assets", &c.Assets, f.Assets)
	setValue(flags, "github-token-ref", &c.TokenRef, f.TokenRef)
	setValue(flags, "github-api-url", &c.APIURL, f.APIURL)
}

// Apply copies file values into c for every flag not set in flags
func (f *DistFile) Apply(flags FlagState, c *Dist) {
	setValue(flags, "dist-repo", &c.Repo, f.Repo)
	setValue(flags, "dist-stage-dir", &c.StageDir, f.StageDir)
	setValue(flags, "dist-base-dir", &c.BaseDir, f.BaseDir)
	setValue(flags, "dist-files", &c.Files, f.Files)
	setValue(flags, "dist-commit-message", &c.CommitMessage, f.CommitMessage)
	setValue(flags, "dist-tag-name", &c.TagName, f.TagName)
	setValue(flags, "dist-tag-annotation", &c.TagAnnotation, f.TagAnnotation)
	setValue(flags, "dist-push-repo", &c.PushRepo, f.PushRepo)
}

// Apply copies file values into c for every flag not set in flags
func (f *SlackFile) Apply(flags FlagState, c *Slack) {
	setValue(flags, "slack-channel", &c.Channel, f.Channel)
}

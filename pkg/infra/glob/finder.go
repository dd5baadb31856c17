package glob

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/shipit/pkg/domain/interfaces"
)

// Finder resolves glob patterns against the filesystem. "*" does not cross
// directory boundaries, "**" does.
type Finder struct {
	baseDir string
}

var _ interfaces.AssetFinder = (*Finder)(nil)

// NewFinder creates a Finder resolving relative patterns against baseDir
func NewFinder(baseDir string) *Finder {
	return &Finder{baseDir: baseDir}
}

// Find returns the regular files matching pattern, sorted. Relative patterns
// yield paths relative to the base directory joined with it.
func (f *Finder) Find(pattern string) ([]string, error) {
	pattern = filepath.ToSlash(strings.TrimSpace(pattern))
	if pattern == "" {
		return nil, nil
	}

	abs := filepath.IsAbs(pattern)
	if !abs && f.baseDir != "" {
		pattern = filepath.ToSlash(filepath.Join(f.baseDir, pattern))
	}
	pattern = strings.TrimPrefix(pattern, "./")

	matcher, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, goerr.Wrap(err, "invalid glob pattern", goerr.V("pattern", pattern))
	}

	root := staticPrefix(pattern)
	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to stat glob root", goerr.V("root", root))
	}

	var matches []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		slashed := strings.TrimPrefix(filepath.ToSlash(path), "./")
		if matcher.Match(slashed) {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to walk directory", goerr.V("root", root))
	}

	sort.Strings(matches)
	return matches, nil
}

// staticPrefix returns the longest leading directory of pattern without glob meta characters
func staticPrefix(pattern string) string {
	idx := strings.IndexAny(pattern, `*?[{\`)
	if idx < 0 {
		return filepath.FromSlash(pattern)
	}

	dir := pattern[:idx]
	if i := strings.LastIndex(dir, "/"); i >= 0 {
		dir = dir[:i]
		if dir == "" {
			return "/"
		}
		return filepath.FromSlash(dir)
	}
	return "."
}

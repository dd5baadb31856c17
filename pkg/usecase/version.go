package usecase

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/m-mizutani/goerr/v2"
)

const (
	IncrementMajor = "major"
	IncrementMinor = "minor"
	IncrementPatch = "patch"
)

// ResolveVersion returns the version to release. arg is either an explicit version,
// returned unchanged, or an increment keyword applied to previous. An empty arg
// means a patch increment.
func ResolveVersion(arg, previous string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		arg = IncrementPatch
	}

	switch arg {
	case IncrementMajor, IncrementMinor, IncrementPatch:
	default:
		return arg, nil
	}

	if previous == "" {
		previous = "0.0.0"
	}
	base, err := semver.NewVersion(previous)
	if err != nil {
		return "", goerr.Wrap(err, "previous version is not semantic, give an explicit version",
			goerr.V("previous", previous),
			goerr.V("increment", arg),
		)
	}

	var next semver.Version
	switch arg {
	case IncrementMajor:
		next = base.IncMajor()
	case IncrementMinor:
		next = base.IncMinor()
	default:
		next = base.IncPatch()
	}
	return next.String(), nil
}

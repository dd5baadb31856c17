package interfaces

import "context"

// ReleaseWorkflow runs a whole release for one version
type ReleaseWorkflow interface {
	// Run releases version. version may also be an increment keyword (major, minor, patch)
	Run(ctx context.Context, version string) error
}

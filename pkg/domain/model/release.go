package model

// ReleaseRequest contains the information needed to create a new release
type ReleaseRequest struct {
	TagName    string // Rendered tag name, e.g. "v1.0.0"
	Name       string // Rendered release name
	Body       string // Changelog text
	Draft      bool
	Prerelease bool
}

// Release represents a created remote release
type Release struct {
	ID      int64
	TagName string
	Name    string
	HTMLURL string
}

// Asset represents an uploaded release asset
type Asset struct {
	Name string
	URL  string
}

package interfaces

// AssetFinder resolves a glob pattern to file paths. It is evaluated on every call.
type AssetFinder interface {
	Find(pattern string) ([]string, error)
}

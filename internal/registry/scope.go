package registry

// Scope is the read-only view of the registry under one working directory.
type Scope struct {
	WorkingDirectory string
	// RepositoryPaths lists the in-scope paths in sorted order.
	RepositoryPaths []string
	// IgnoredCount counts known paths outside the working directory.
	IgnoredCount int
}

// Contains reports whether the path is in scope.
func (scope Scope) Contains(repositoryPath string) bool {
	for _, scopedPath := range scope.RepositoryPaths {
		if scopedPath == repositoryPath {
			return true
		}
	}
	return false
}

// Len returns the number of in-scope paths.
func (scope Scope) Len() int {
	return len(scope.RepositoryPaths)
}

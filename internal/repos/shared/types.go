package shared

import (
	"context"
	"io/fs"

	"github.com/temirov/reposcan/internal/execshell"
	"github.com/temirov/reposcan/internal/registry"
)

const (
	// GitMetadataDirectoryNameConstant names the directory that marks a repository root.
	GitMetadataDirectoryNameConstant = ".git"
	// DefaultExclusionMarkerFileNameConstant names the per-directory exclusion list.
	DefaultExclusionMarkerFileNameConstant = ".reposcanignore"
)

// FileSystem exposes filesystem operations required by repository services.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	ReadDir(path string) ([]fs.DirEntry, error)
	EvalSymlinks(path string) (string, error)
	Rename(oldPath string, newPath string) error
	Remove(path string) error
	MkdirAll(path string, permissions fs.FileMode) error
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, permissions fs.FileMode) error
	Getwd() (string, error)
}

// GitExecutor exposes the subset of shell execution used by repository services.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryDiscoverer locates Git repositories beneath the provided roots.
type RepositoryDiscoverer interface {
	DiscoverRepositories(roots []string) ([]string, error)
}

// RegistryStore loads and persists the known registry.
type RegistryStore interface {
	Load() (registry.Registry, error)
	Save(knownRegistry registry.Registry) error
}

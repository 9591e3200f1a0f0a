package registry

import (
	"sort"
	"strings"
)

const (
	registryLineSeparatorConstant = "\n"
	carriageReturnConstant        = "\r"
)

// Registry is the set of known repository paths.
type Registry struct {
	repositoryPaths map[string]struct{}
}

// New builds a registry from the provided paths, collapsing duplicates and blank entries.
func New(repositoryPaths ...string) Registry {
	registry := Registry{repositoryPaths: make(map[string]struct{}, len(repositoryPaths))}
	for _, repositoryPath := range repositoryPaths {
		registry.Add(repositoryPath)
	}
	return registry
}

// Parse decodes registry file contents.
func Parse(contents []byte) Registry {
	lines := strings.Split(string(contents), registryLineSeparatorConstant)
	for lineIndex := range lines {
		lines[lineIndex] = strings.TrimSuffix(lines[lineIndex], carriageReturnConstant)
	}
	return New(lines...)
}

// Contains reports whether the exact path is known.
func (registry Registry) Contains(repositoryPath string) bool {
	_, known := registry.repositoryPaths[repositoryPath]
	return known
}

// Add inserts a path and reports whether it was new.
func (registry *Registry) Add(repositoryPath string) bool {
	if len(strings.TrimSpace(repositoryPath)) == 0 {
		return false
	}
	if registry.repositoryPaths == nil {
		registry.repositoryPaths = make(map[string]struct{})
	}
	if _, known := registry.repositoryPaths[repositoryPath]; known {
		return false
	}
	registry.repositoryPaths[repositoryPath] = struct{}{}
	return true
}

// Remove deletes a path and reports whether it was present.
func (registry *Registry) Remove(repositoryPath string) bool {
	if _, known := registry.repositoryPaths[repositoryPath]; !known {
		return false
	}
	delete(registry.repositoryPaths, repositoryPath)
	return true
}

// Clone returns an independent copy.
func (registry Registry) Clone() Registry {
	cloned := Registry{repositoryPaths: make(map[string]struct{}, len(registry.repositoryPaths))}
	for repositoryPath := range registry.repositoryPaths {
		cloned.repositoryPaths[repositoryPath] = struct{}{}
	}
	return cloned
}

// Len returns the number of known paths.
func (registry Registry) Len() int {
	return len(registry.repositoryPaths)
}

// Paths returns the known paths in sorted order.
func (registry Registry) Paths() []string {
	sortedPaths := make([]string, 0, len(registry.repositoryPaths))
	for repositoryPath := range registry.repositoryPaths {
		sortedPaths = append(sortedPaths, repositoryPath)
	}
	sort.Strings(sortedPaths)
	return sortedPaths
}

// Encode serializes the registry as sorted lines, each terminated by a newline.
func (registry Registry) Encode() []byte {
	var builder strings.Builder
	for _, repositoryPath := range registry.Paths() {
		builder.WriteString(repositoryPath)
		builder.WriteString(registryLineSeparatorConstant)
	}
	return []byte(builder.String())
}

// Scope returns the known paths that have the working directory as a string prefix.
func (registry Registry) Scope(workingDirectory string) Scope {
	scope := Scope{WorkingDirectory: workingDirectory}
	for _, repositoryPath := range registry.Paths() {
		if strings.HasPrefix(repositoryPath, workingDirectory) {
			scope.RepositoryPaths = append(scope.RepositoryPaths, repositoryPath)
			continue
		}
		scope.IgnoredCount++
	}
	return scope
}

package reconcile

import (
	"sort"

	"github.com/temirov/reposcan/internal/registry"
)

// EditPolicy selects which registry edits a reconciliation applies.
type EditPolicy struct {
	AddNew        bool
	PruneObsolete bool
}

// ReadOnly reports whether the reconciliation only reports differences.
func (policy EditPolicy) ReadOnly() bool {
	return !policy.AddNew && !policy.PruneObsolete
}

// Result describes one reconciliation pass.
type Result struct {
	// New lists discovered paths missing from the scope.
	New []string
	// Obsolete lists scoped paths that were not discovered.
	Obsolete []string
	// Added lists the New paths inserted into the registry.
	Added []string
	// Removed lists the Obsolete paths dropped from the registry.
	Removed []string
	// Registry is the reconciled registry; it equals the input when the policy is read-only.
	Registry registry.Registry
	Policy   EditPolicy
}

// Modified reports whether the registry must be written back.
func (result Result) Modified() bool {
	return !result.Policy.ReadOnly()
}

// Diff computes New = discovered - scope and Obsolete = scope - discovered, both sorted.
func Diff(discoveredPaths []string, scope registry.Scope) ([]string, []string) {
	discoveredSet := make(map[string]struct{}, len(discoveredPaths))
	for _, discoveredPath := range discoveredPaths {
		discoveredSet[discoveredPath] = struct{}{}
	}

	scopedSet := make(map[string]struct{}, len(scope.RepositoryPaths))
	for _, scopedPath := range scope.RepositoryPaths {
		scopedSet[scopedPath] = struct{}{}
	}

	newPaths := []string{}
	for discoveredPath := range discoveredSet {
		if _, scoped := scopedSet[discoveredPath]; !scoped {
			newPaths = append(newPaths, discoveredPath)
		}
	}

	obsoletePaths := []string{}
	for scopedPath := range scopedSet {
		if _, discovered := discoveredSet[scopedPath]; !discovered {
			obsoletePaths = append(obsoletePaths, scopedPath)
		}
	}

	sort.Strings(newPaths)
	sort.Strings(obsoletePaths)
	return newPaths, obsoletePaths
}

// Apply reconciles a copy of known against the discovered paths. Entries outside
// the scope are never touched, and insertion is keyed on the whole registry.
func Apply(known registry.Registry, discoveredPaths []string, scope registry.Scope, policy EditPolicy) Result {
	newPaths, obsoletePaths := Diff(discoveredPaths, scope)
	result := Result{
		New:      newPaths,
		Obsolete: obsoletePaths,
		Added:    []string{},
		Removed:  []string{},
		Registry: known.Clone(),
		Policy:   policy,
	}

	if policy.AddNew {
		for _, newPath := range newPaths {
			if result.Registry.Add(newPath) {
				result.Added = append(result.Added, newPath)
			}
		}
	}

	if policy.PruneObsolete {
		for _, obsoletePath := range obsoletePaths {
			if result.Registry.Remove(obsoletePath) {
				result.Removed = append(result.Removed, obsoletePath)
			}
		}
	}

	return result
}

// Package reconcile diffs freshly discovered repositories against the
// in-scope part of the registry and applies add and prune edits.
package reconcile

// Package status reports whether each repository in the working-directory
// scope is clean: no merge, rebase, cherry-pick, revert or bisect in progress
// and no changed working-tree entries.
package status

// Package gitrepo opens git repositories through go-git and exposes the
// signals reposcan needs: in-progress operation state, changed working-tree
// entries, local branches, remotes, and credential-less fetch.
//
// Enumerations are best effort. Branch entries that fail to resolve are kept
// as results carrying their error, and ResolvedBranchNames drops them at the
// point of use.
package gitrepo

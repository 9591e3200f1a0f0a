// Package registry persists the set of known repository roots.
//
// The registry file holds one absolute path per line. Registry is a value with
// set semantics; Store loads and saves it, and Scope derives the subset that
// lives under the working directory.
package registry

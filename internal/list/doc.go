// Package list prints registered repositories, scoped to the working
// directory unless the global view is requested, optionally narrowed by a
// fuzzy pattern.
package list

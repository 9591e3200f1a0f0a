// Package discover scans the working directory for git repositories and
// reconciles the result with the registry. Without edit flags it only reports
// the differences; with --add and --prune it rewrites the registry.
package discover

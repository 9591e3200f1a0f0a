// Package execshell runs external tools with structured logging.
//
// ShellExecutor wraps a CommandRunner, turns non-zero exit codes into
// CommandFailedError values, and reports lifecycle events to zap and to an
// optional CommandEventObserver. OSCommandRunner is the os/exec backed runner
// used by the fetch fallback.
package execshell

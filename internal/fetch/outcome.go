package fetch

import (
	"fmt"
	"strings"
)

// OutcomeKind tags how a remote fetch ended.
type OutcomeKind int

// Outcome kinds.
const (
	OutcomeDirectSuccess OutcomeKind = iota
	OutcomeFallbackSuccess
	OutcomeFailure
)

const (
	unknownExitCodeConstant            = -1
	directSuccessDescriptionConstant   = "fetched directly"
	fallbackSuccessDescriptionConstant = "fetched via git fetch"
	failureDescriptionConstant         = "failed"
	exitCodeSuffixTemplateConstant     = " (exit code %d)"
	diagnosticSuffixTemplateConstant   = ": %s"
)

// Outcome is the tagged result of fetching one remote.
type Outcome struct {
	Kind       OutcomeKind
	ExitCode   int
	Diagnostic string
}

// DirectSuccess reports an in-process fetch that succeeded.
func DirectSuccess() Outcome {
	return Outcome{Kind: OutcomeDirectSuccess}
}

// FallbackSuccess reports an external fetch that exited successfully.
func FallbackSuccess(exitCode int) Outcome {
	return Outcome{Kind: OutcomeFallbackSuccess, ExitCode: exitCode}
}

// Failure reports a remote that could not be fetched. Use a negative exit code when no process exited.
func Failure(diagnostic string, exitCode int) Outcome {
	return Outcome{Kind: OutcomeFailure, ExitCode: exitCode, Diagnostic: strings.TrimSpace(diagnostic)}
}

// Succeeded reports whether the remote was fetched by either strategy.
func (outcome Outcome) Succeeded() bool {
	return outcome.Kind != OutcomeFailure
}

// Describe renders the outcome for the per-remote report line.
func (outcome Outcome) Describe() string {
	switch outcome.Kind {
	case OutcomeDirectSuccess:
		return directSuccessDescriptionConstant
	case OutcomeFallbackSuccess:
		return fallbackSuccessDescriptionConstant
	default:
		description := failureDescriptionConstant
		if outcome.ExitCode >= 0 {
			description += fmt.Sprintf(exitCodeSuffixTemplateConstant, outcome.ExitCode)
		}
		if len(outcome.Diagnostic) > 0 {
			description += fmt.Sprintf(diagnosticSuffixTemplateConstant, outcome.Diagnostic)
		}
		return description
	}
}

// RemoteOutcome pairs a remote name with its outcome.
type RemoteOutcome struct {
	Remote  string
	Outcome Outcome
}

// RepositoryResult collects the outcomes for one repository in remote order.
type RepositoryResult struct {
	Path     string
	Branches []string
	Remotes  []RemoteOutcome
}

// Failed counts the remotes that could not be fetched.
func (result RepositoryResult) Failed() int {
	failedCount := 0
	for _, remoteOutcome := range result.Remotes {
		if !remoteOutcome.Outcome.Succeeded() {
			failedCount++
		}
	}
	return failedCount
}

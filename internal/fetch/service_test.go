package fetch_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/reposcan/internal/execshell"
	"github.com/temirov/reposcan/internal/fetch"
	"github.com/temirov/reposcan/internal/gitrepo"
	"github.com/temirov/reposcan/internal/registry"
	"github.com/temirov/reposcan/internal/repos/shared"
)

const (
	testWorkingDirectory      = "/work"
	testAlphaRepository       = "/work/alpha"
	testBetaRepository        = "/work/beta"
	testOriginRemote          = "origin"
	testMirrorRemote          = "mirror"
	testMainBranch            = "main"
	testFeatureBranch         = "feature"
	testDirectFailureMessage  = "authentication required"
	testFallbackStandardError = "fatal: could not read from remote repository\n"
	testFallbackDiagnostic    = "fatal: could not read from remote repository"
	testSpawnFailureMessage   = "executable file not found"
	testOpenFailureMessage    = "not a repository"
	testBranchFailureMessage  = "branch listing failed"
	testFallbackExitCode      = 128
	testRemoteTimeout         = 5 * time.Second
)

type fetchCall struct {
	remote      string
	branches    []string
	hasDeadline bool
}

type stubRepository struct {
	path          string
	branches      []gitrepo.BranchResult
	branchesError error
	remotes       []gitrepo.RemoteReference
	fetchErrors   map[string]error
	fetchCalls    []fetchCall
}

func (repository *stubRepository) Path() string { return repository.path }

func (repository *stubRepository) State() (gitrepo.RepositoryState, error) {
	return gitrepo.StateClean, nil
}

func (repository *stubRepository) ChangedEntryCount() (int, error) { return 0, nil }

func (repository *stubRepository) LocalBranches() ([]gitrepo.BranchResult, error) {
	return repository.branches, repository.branchesError
}

func (repository *stubRepository) Remotes() ([]gitrepo.RemoteReference, error) {
	return repository.remotes, nil
}

func (repository *stubRepository) Fetch(executionContext context.Context, remoteName string, branchNames []string) error {
	_, hasDeadline := executionContext.Deadline()
	repository.fetchCalls = append(repository.fetchCalls, fetchCall{remote: remoteName, branches: branchNames, hasDeadline: hasDeadline})
	return repository.fetchErrors[remoteName]
}

type stubOpener struct {
	repositories map[string]*stubRepository
}

func (opener *stubOpener) Open(repositoryPath string) (gitrepo.Repository, error) {
	repository, exists := opener.repositories[repositoryPath]
	if !exists {
		return nil, errors.New(testOpenFailureMessage)
	}
	return repository, nil
}

type executorResponse struct {
	result execshell.ExecutionResult
	err    error
}

type recordingGitExecutor struct {
	responses map[string]executorResponse
	calls     []execshell.CommandDetails
}

func (executor *recordingGitExecutor) ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.calls = append(executor.calls, details)
	response := executor.responses[details.Arguments[len(details.Arguments)-1]]
	return response.result, response.err
}

func newFetchService(testInstance *testing.T, opener gitrepo.Opener, executor shared.GitExecutor, configuration fetch.Configuration) (*fetch.Service, *bytes.Buffer) {
	testInstance.Helper()
	outputBuffer := &bytes.Buffer{}
	service, creationError := fetch.NewService(fetch.Dependencies{
		Opener:        opener,
		GitExecutor:   executor,
		Reporter:      shared.NewWriterReporter(outputBuffer),
		Configuration: configuration,
	})
	require.NoError(testInstance, creationError)
	return service, outputBuffer
}

func standardRemotes() []gitrepo.RemoteReference {
	return []gitrepo.RemoteReference{{Name: testOriginRemote}, {Name: ""}, {Name: testMirrorRemote}}
}

func standardBranches() []gitrepo.BranchResult {
	return []gitrepo.BranchResult{
		{Name: testMainBranch},
		{Name: "dangling", Error: errors.New("reference not found")},
		{Name: testFeatureBranch},
	}
}

func TestNewServiceValidatesDependencies(testInstance *testing.T) {
	testCases := []struct {
		name          string
		dependencies  fetch.Dependencies
		expectedError error
	}{
		{
			name:          "missing_opener",
			dependencies:  fetch.Dependencies{GitExecutor: &recordingGitExecutor{}, Reporter: shared.NewWriterReporter(&bytes.Buffer{})},
			expectedError: fetch.ErrRepositoryOpenerNotConfigured,
		},
		{
			name:          "missing_executor",
			dependencies:  fetch.Dependencies{Opener: &stubOpener{}, Reporter: shared.NewWriterReporter(&bytes.Buffer{})},
			expectedError: fetch.ErrGitExecutorNotConfigured,
		},
		{
			name:          "missing_reporter",
			dependencies:  fetch.Dependencies{Opener: &stubOpener{}, GitExecutor: &recordingGitExecutor{}},
			expectedError: fetch.ErrReporterNotConfigured,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			service, creationError := fetch.NewService(testCase.dependencies)
			require.ErrorIs(subtest, creationError, testCase.expectedError)
			require.Nil(subtest, service)
		})
	}
}

func TestServiceFetchStrategies(testInstance *testing.T) {
	testCases := []struct {
		name              string
		fetchErrors       map[string]error
		responses         map[string]executorResponse
		configuration     fetch.Configuration
		expectedOutcomes  []fetch.RemoteOutcome
		expectedFallbacks []string
		expectedOutput    string
	}{
		{
			name:          "direct_success",
			configuration: fetch.DefaultConfiguration(),
			expectedOutcomes: []fetch.RemoteOutcome{
				{Remote: testOriginRemote, Outcome: fetch.DirectSuccess()},
				{Remote: testMirrorRemote, Outcome: fetch.DirectSuccess()},
			},
			expectedOutput: "fetching \"/work/alpha\"\n  origin: fetched directly\n  mirror: fetched directly\n",
		},
		{
			name:          "fallback_success",
			fetchErrors:   map[string]error{testOriginRemote: errors.New(testDirectFailureMessage)},
			configuration: fetch.DefaultConfiguration(),
			expectedOutcomes: []fetch.RemoteOutcome{
				{Remote: testOriginRemote, Outcome: fetch.FallbackSuccess(0)},
				{Remote: testMirrorRemote, Outcome: fetch.DirectSuccess()},
			},
			expectedFallbacks: []string{testOriginRemote},
			expectedOutput:    "fetching \"/work/alpha\"\n  origin: fetched via git fetch\n  mirror: fetched directly\n",
		},
		{
			name: "fallback_failure_continues_with_next_remote",
			fetchErrors: map[string]error{
				testOriginRemote: errors.New(testDirectFailureMessage),
				testMirrorRemote: errors.New(testDirectFailureMessage),
			},
			responses: map[string]executorResponse{
				testOriginRemote: {err: execshell.CommandFailedError{
					Command: execshell.ShellCommand{Name: execshell.CommandGit},
					Result:  execshell.ExecutionResult{ExitCode: testFallbackExitCode, StandardError: testFallbackStandardError},
				}},
			},
			configuration: fetch.DefaultConfiguration(),
			expectedOutcomes: []fetch.RemoteOutcome{
				{Remote: testOriginRemote, Outcome: fetch.Failure(testFallbackDiagnostic, testFallbackExitCode)},
				{Remote: testMirrorRemote, Outcome: fetch.FallbackSuccess(0)},
			},
			expectedFallbacks: []string{testOriginRemote, testMirrorRemote},
			expectedOutput: "fetching \"/work/alpha\"\n" +
				"  origin: failed (exit code 128): fatal: could not read from remote repository\n" +
				"  mirror: fetched via git fetch\n",
		},
		{
			name:        "fallback_could_not_start",
			fetchErrors: map[string]error{testOriginRemote: errors.New(testDirectFailureMessage)},
			responses: map[string]executorResponse{
				testOriginRemote: {err: execshell.CommandExecutionError{
					Command: execshell.ShellCommand{Name: execshell.CommandGit},
					Cause:   errors.New(testSpawnFailureMessage),
				}},
			},
			configuration: fetch.DefaultConfiguration(),
			expectedOutcomes: []fetch.RemoteOutcome{
				{Remote: testOriginRemote, Outcome: fetch.Failure("git could not be executed: "+testSpawnFailureMessage, -1)},
				{Remote: testMirrorRemote, Outcome: fetch.DirectSuccess()},
			},
			expectedFallbacks: []string{testOriginRemote},
			expectedOutput: "fetching \"/work/alpha\"\n" +
				"  origin: failed: git could not be executed: executable file not found\n" +
				"  mirror: fetched directly\n",
		},
		{
			name:          "fallback_disabled",
			fetchErrors:   map[string]error{testMirrorRemote: errors.New(testDirectFailureMessage)},
			configuration: fetch.Configuration{FallbackEnabled: false},
			expectedOutcomes: []fetch.RemoteOutcome{
				{Remote: testOriginRemote, Outcome: fetch.DirectSuccess()},
				{Remote: testMirrorRemote, Outcome: fetch.Failure(testDirectFailureMessage, -1)},
			},
			expectedOutput: "fetching \"/work/alpha\"\n" +
				"  origin: fetched directly\n" +
				"  mirror: failed: authentication required\n",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			repository := &stubRepository{
				path:        testAlphaRepository,
				branches:    standardBranches(),
				remotes:     standardRemotes(),
				fetchErrors: testCase.fetchErrors,
			}
			executor := &recordingGitExecutor{responses: testCase.responses}
			service, outputBuffer := newFetchService(subtest, &stubOpener{repositories: map[string]*stubRepository{testAlphaRepository: repository}}, executor, testCase.configuration)

			results, runError := service.Run(context.Background(), registry.New(testAlphaRepository).Scope(testWorkingDirectory))
			require.NoError(subtest, runError)
			require.Len(subtest, results, 1)
			require.Equal(subtest, testCase.expectedOutcomes, results[0].Remotes)
			require.Equal(subtest, []string{testMainBranch, testFeatureBranch}, results[0].Branches)
			require.Equal(subtest, testCase.expectedOutput, outputBuffer.String())

			require.Len(subtest, repository.fetchCalls, 2)
			for _, call := range repository.fetchCalls {
				require.Equal(subtest, []string{testMainBranch, testFeatureBranch}, call.branches)
			}

			fallbackRemotes := make([]string, 0, len(executor.calls))
			for _, details := range executor.calls {
				require.Equal(subtest, testAlphaRepository, details.WorkingDirectory)
				require.Len(subtest, details.Arguments, 2)
				require.Equal(subtest, "fetch", details.Arguments[0])
				fallbackRemotes = append(fallbackRemotes, details.Arguments[1])
			}
			if len(testCase.expectedFallbacks) == 0 {
				require.Empty(subtest, fallbackRemotes)
			} else {
				require.Equal(subtest, testCase.expectedFallbacks, fallbackRemotes)
			}
		})
	}
}

func TestServiceRunAbortsOnRepositoryErrors(testInstance *testing.T) {
	testCases := []struct {
		name            string
		repositories    map[string]*stubRepository
		expectedMessage string
		expectedResults int
	}{
		{
			name: "open_failure_on_second_repository",
			repositories: map[string]*stubRepository{
				testAlphaRepository: {path: testAlphaRepository, remotes: standardRemotes()},
			},
			expectedMessage: testOpenFailureMessage,
			expectedResults: 1,
		},
		{
			name: "branch_enumeration_failure",
			repositories: map[string]*stubRepository{
				testAlphaRepository: {path: testAlphaRepository, branchesError: errors.New(testBranchFailureMessage)},
				testBetaRepository:  {path: testBetaRepository, remotes: standardRemotes()},
			},
			expectedMessage: testBranchFailureMessage,
			expectedResults: 0,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			service, _ := newFetchService(subtest, &stubOpener{repositories: testCase.repositories}, &recordingGitExecutor{}, fetch.DefaultConfiguration())
			results, runError := service.Run(context.Background(), registry.New(testAlphaRepository, testBetaRepository).Scope(testWorkingDirectory))
			require.ErrorContains(subtest, runError, testCase.expectedMessage)
			require.Len(subtest, results, testCase.expectedResults)
		})
	}
}

func TestServiceAppliesRemoteTimeout(testInstance *testing.T) {
	testCases := []struct {
		name             string
		configuration    fetch.Configuration
		expectedDeadline bool
	}{
		{name: "no_timeout", configuration: fetch.DefaultConfiguration(), expectedDeadline: false},
		{name: "with_timeout", configuration: fetch.Configuration{RemoteTimeout: testRemoteTimeout, FallbackEnabled: true}, expectedDeadline: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			repository := &stubRepository{path: testAlphaRepository, remotes: []gitrepo.RemoteReference{{Name: testOriginRemote}}}
			service, _ := newFetchService(subtest, &stubOpener{repositories: map[string]*stubRepository{testAlphaRepository: repository}}, &recordingGitExecutor{}, testCase.configuration)

			_, runError := service.Run(context.Background(), registry.New(testAlphaRepository).Scope(testWorkingDirectory))
			require.NoError(subtest, runError)
			require.Len(subtest, repository.fetchCalls, 1)
			require.Equal(subtest, testCase.expectedDeadline, repository.fetchCalls[0].hasDeadline)
		})
	}
}

func TestServiceRunHonorsCancelledContext(testInstance *testing.T) {
	repository := &stubRepository{path: testAlphaRepository, remotes: standardRemotes()}
	service, outputBuffer := newFetchService(testInstance, &stubOpener{repositories: map[string]*stubRepository{testAlphaRepository: repository}}, &recordingGitExecutor{}, fetch.DefaultConfiguration())

	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	_, runError := service.Run(cancelledContext, registry.New(testAlphaRepository).Scope(testWorkingDirectory))
	require.ErrorIs(testInstance, runError, context.Canceled)
	require.Empty(testInstance, repository.fetchCalls)
	require.Empty(testInstance, outputBuffer.String())
}

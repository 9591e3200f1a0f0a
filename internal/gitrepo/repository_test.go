package gitrepo_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"github.com/temirov/reposcan/internal/gitrepo"
)

const (
	testTrackedFileName   = "README.md"
	testUntrackedFileName = "notes.txt"
	testIgnoredFileName   = "build.log"
	testGitIgnoreFileName = ".gitignore"
	testCommitMessage     = "initial commit"
	testAuthorName        = "Repository Operator"
	testAuthorEmail       = "operator@example.com"
	testOriginRemoteName  = "origin"
	testMirrorRemoteName  = "mirror"
	testFilePermissions   = 0o644
	testMissingRemotePath = "does-not-exist"
	testBrokenBranchName  = "broken"
	testMissingBranchName = "missing"
	testGitDirectoryName  = ".git"
	testMainBranchName    = "master"
)

func initializeRepositoryWithCommit(testInstance *testing.T, repositoryPath string) *git.Repository {
	testInstance.Helper()

	repository, initError := git.PlainInit(repositoryPath, false)
	require.NoError(testInstance, initError)

	writeFile(testInstance, filepath.Join(repositoryPath, testTrackedFileName), "hello\n")
	writeFile(testInstance, filepath.Join(repositoryPath, testGitIgnoreFileName), "*.log\n")

	worktree, worktreeError := repository.Worktree()
	require.NoError(testInstance, worktreeError)
	_, addError := worktree.Add(testTrackedFileName)
	require.NoError(testInstance, addError)
	_, addIgnoreError := worktree.Add(testGitIgnoreFileName)
	require.NoError(testInstance, addIgnoreError)

	_, commitError := worktree.Commit(testCommitMessage, &git.CommitOptions{
		Author: &object.Signature{Name: testAuthorName, Email: testAuthorEmail, When: time.Unix(1700000000, 0)},
	})
	require.NoError(testInstance, commitError)
	return repository
}

func writeFile(testInstance *testing.T, filePath string, contents string) {
	testInstance.Helper()
	require.NoError(testInstance, os.WriteFile(filePath, []byte(contents), testFilePermissions))
}

func openRepository(testInstance *testing.T, repositoryPath string) gitrepo.Repository {
	testInstance.Helper()
	repository, openError := gitrepo.NewGoGitOpener().Open(repositoryPath)
	require.NoError(testInstance, openError)
	require.Equal(testInstance, repositoryPath, repository.Path())
	return repository
}

func TestOpenRejectsNonRepository(testInstance *testing.T) {
	repository, openError := gitrepo.NewGoGitOpener().Open(testInstance.TempDir())
	require.Error(testInstance, openError)
	require.Nil(testInstance, repository)
}

func TestChangedEntryCount(testInstance *testing.T) {
	testCases := []struct {
		name          string
		prepare       func(testInstance *testing.T, repositoryPath string)
		expectedCount int
	}{
		{
			name:          "clean_worktree",
			prepare:       func(*testing.T, string) {},
			expectedCount: 0,
		},
		{
			name: "ignored_file_is_not_counted",
			prepare: func(testInstance *testing.T, repositoryPath string) {
				writeFile(testInstance, filepath.Join(repositoryPath, testIgnoredFileName), "noise\n")
			},
			expectedCount: 0,
		},
		{
			name: "modified_tracked_file",
			prepare: func(testInstance *testing.T, repositoryPath string) {
				writeFile(testInstance, filepath.Join(repositoryPath, testTrackedFileName), "changed\n")
			},
			expectedCount: 1,
		},
		{
			name: "modified_and_untracked",
			prepare: func(testInstance *testing.T, repositoryPath string) {
				writeFile(testInstance, filepath.Join(repositoryPath, testTrackedFileName), "changed\n")
				writeFile(testInstance, filepath.Join(repositoryPath, testUntrackedFileName), "draft\n")
			},
			expectedCount: 2,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			repositoryPath := testInstance.TempDir()
			initializeRepositoryWithCommit(testInstance, repositoryPath)
			testCase.prepare(testInstance, repositoryPath)

			changedEntries, countError := openRepository(testInstance, repositoryPath).ChangedEntryCount()
			require.NoError(testInstance, countError)
			require.Equal(testInstance, testCase.expectedCount, changedEntries)
		})
	}
}

func TestStateDetectsInProgressOperations(testInstance *testing.T) {
	testCases := []struct {
		name          string
		markerPath    string
		markerIsDir   bool
		expectedState gitrepo.RepositoryState
	}{
		{name: "no_marker", expectedState: gitrepo.StateClean},
		{name: "merge", markerPath: "MERGE_HEAD", expectedState: gitrepo.StateMerging},
		{name: "interactive_rebase", markerPath: "rebase-merge", markerIsDir: true, expectedState: gitrepo.StateRebasing},
		{name: "am_rebase", markerPath: "rebase-apply", markerIsDir: true, expectedState: gitrepo.StateRebasing},
		{name: "cherry_pick", markerPath: "CHERRY_PICK_HEAD", expectedState: gitrepo.StateCherryPicking},
		{name: "revert", markerPath: "REVERT_HEAD", expectedState: gitrepo.StateReverting},
		{name: "bisect", markerPath: "BISECT_LOG", expectedState: gitrepo.StateBisecting},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			repositoryPath := testInstance.TempDir()
			initializeRepositoryWithCommit(testInstance, repositoryPath)

			if len(testCase.markerPath) > 0 {
				markerPath := filepath.Join(repositoryPath, testGitDirectoryName, testCase.markerPath)
				if testCase.markerIsDir {
					require.NoError(testInstance, os.MkdirAll(markerPath, 0o755))
				} else {
					writeFile(testInstance, markerPath, "0000000000000000000000000000000000000000\n")
				}
			}

			state, stateError := openRepository(testInstance, repositoryPath).State()
			require.NoError(testInstance, stateError)
			require.Equal(testInstance, testCase.expectedState, state)
			require.Equal(testInstance, testCase.expectedState == gitrepo.StateClean, state.IsClean())
		})
	}
}

func TestLocalBranchesKeepsUnresolvableEntriesAsErrors(testInstance *testing.T) {
	repositoryPath := testInstance.TempDir()
	repository := initializeRepositoryWithCommit(testInstance, repositoryPath)

	brokenReference := plumbing.NewSymbolicReference(plumbing.NewBranchReferenceName(testBrokenBranchName), plumbing.NewBranchReferenceName(testMissingBranchName))
	require.NoError(testInstance, repository.Storer.SetReference(brokenReference))

	branches, branchesError := openRepository(testInstance, repositoryPath).LocalBranches()
	require.NoError(testInstance, branchesError)
	require.Len(testInstance, branches, 2)

	require.Equal(testInstance, []string{testMainBranchName}, gitrepo.ResolvedBranchNames(branches))
}

func TestRemotesAndFetch(testInstance *testing.T) {
	upstreamPath := filepath.Join(testInstance.TempDir(), "upstream")
	initializeRepositoryWithCommit(testInstance, upstreamPath)

	downstreamPath := filepath.Join(testInstance.TempDir(), "downstream")
	downstream, cloneError := git.PlainClone(downstreamPath, false, &git.CloneOptions{URL: upstreamPath})
	require.NoError(testInstance, cloneError)

	_, remoteError := downstream.CreateRemote(&config.RemoteConfig{
		Name: testMirrorRemoteName,
		URLs: []string{filepath.Join(testInstance.TempDir(), testMissingRemotePath)},
	})
	require.NoError(testInstance, remoteError)

	repository := openRepository(testInstance, downstreamPath)

	remotes, remotesError := repository.Remotes()
	require.NoError(testInstance, remotesError)
	require.Equal(testInstance, []string{testMirrorRemoteName, testOriginRemoteName}, gitrepo.NamedRemotes(remotes))

	branches, branchesError := repository.LocalBranches()
	require.NoError(testInstance, branchesError)
	branchNames := gitrepo.ResolvedBranchNames(branches)
	require.Equal(testInstance, []string{testMainBranchName}, branchNames)

	require.NoError(testInstance, repository.Fetch(context.Background(), testOriginRemoteName, branchNames))
	require.Error(testInstance, repository.Fetch(context.Background(), testMirrorRemoteName, branchNames))
	require.ErrorIs(testInstance, repository.Fetch(context.Background(), " ", branchNames), gitrepo.ErrRemoteNameRequired)
}

func TestBranchRefSpecs(testInstance *testing.T) {
	require.Nil(testInstance, gitrepo.BranchRefSpecs(testOriginRemoteName, nil))
	require.Equal(testInstance,
		[]config.RefSpec{"+refs/heads/main:refs/remotes/origin/main", "+refs/heads/feature/x:refs/remotes/origin/feature/x"},
		gitrepo.BranchRefSpecs(testOriginRemoteName, []string{"main", "feature/x"}),
	)
}

func TestNamedRemotesSkipsUnnamedEntries(testInstance *testing.T) {
	remoteNames := gitrepo.NamedRemotes([]gitrepo.RemoteReference{{Name: testOriginRemoteName}, {Name: ""}, {Name: "  "}})
	require.Equal(testInstance, []string{testOriginRemoteName}, remoteNames)
}

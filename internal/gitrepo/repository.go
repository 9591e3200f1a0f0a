package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
)

const (
	openRepositoryErrorTemplateConstant = "unable to open repository %s: %w"
	worktreeErrorTemplateConstant       = "unable to access worktree of %s: %w"
	statusErrorTemplateConstant         = "unable to read status of %s: %w"
	branchesErrorTemplateConstant       = "unable to list branches of %s: %w"
	remotesErrorTemplateConstant        = "unable to list remotes of %s: %w"
	remoteLookupErrorTemplateConstant   = "unable to find remote %s in %s: %w"
	fetchErrorTemplateConstant          = "fetch of %s from %s failed: %w"
	branchRefSpecTemplateConstant       = "+refs/heads/%s:refs/remotes/%s/%s"
	missingRemoteNameMessageConstant    = "remote name is required"
)

// ErrRemoteNameRequired indicates Fetch was called without a remote.
var ErrRemoteNameRequired = errors.New(missingRemoteNameMessageConstant)

// BranchResult is one local branch enumeration entry.
type BranchResult struct {
	Name  string
	Error error
}

// RemoteReference describes a configured remote.
type RemoteReference struct {
	Name string
	URLs []string
}

// Repository exposes the repository operations used by the status and fetch commands.
type Repository interface {
	Path() string
	State() (RepositoryState, error)
	ChangedEntryCount() (int, error)
	LocalBranches() ([]BranchResult, error)
	Remotes() ([]RemoteReference, error)
	Fetch(executionContext context.Context, remoteName string, branchNames []string) error
}

// Opener opens repositories by root path.
type Opener interface {
	Open(repositoryPath string) (Repository, error)
}

// GoGitOpener opens repositories with go-git.
type GoGitOpener struct{}

// NewGoGitOpener constructs a GoGitOpener.
func NewGoGitOpener() *GoGitOpener {
	return &GoGitOpener{}
}

// Open opens the repository rooted exactly at repositoryPath; parent directories are not searched.
func (opener *GoGitOpener) Open(repositoryPath string) (Repository, error) {
	repository, openError := git.PlainOpen(repositoryPath)
	if openError != nil {
		return nil, fmt.Errorf(openRepositoryErrorTemplateConstant, repositoryPath, openError)
	}
	return &goGitRepository{path: repositoryPath, repository: repository}, nil
}

type goGitRepository struct {
	path       string
	repository *git.Repository
}

func (repository *goGitRepository) Path() string {
	return repository.path
}

func (repository *goGitRepository) State() (RepositoryState, error) {
	return detectRepositoryState(repository.repository)
}

// ChangedEntryCount counts working-tree entries that differ from HEAD or the index. Ignored files are never reported by go-git.
func (repository *goGitRepository) ChangedEntryCount() (int, error) {
	worktree, worktreeError := repository.repository.Worktree()
	if worktreeError != nil {
		return 0, fmt.Errorf(worktreeErrorTemplateConstant, repository.path, worktreeError)
	}

	worktreeStatus, statusError := worktree.Status()
	if statusError != nil {
		return 0, fmt.Errorf(statusErrorTemplateConstant, repository.path, statusError)
	}

	changedEntries := 0
	for _, fileStatus := range worktreeStatus {
		if fileStatus == nil {
			continue
		}
		if fileStatus.Staging == git.Unmodified && fileStatus.Worktree == git.Unmodified {
			continue
		}
		changedEntries++
	}
	return changedEntries, nil
}

func (repository *goGitRepository) LocalBranches() ([]BranchResult, error) {
	branchIterator, branchesError := repository.repository.Branches()
	if branchesError != nil {
		return nil, fmt.Errorf(branchesErrorTemplateConstant, repository.path, branchesError)
	}
	defer branchIterator.Close()

	var branches []BranchResult
	iterationError := branchIterator.ForEach(func(reference *plumbing.Reference) error {
		branchName := reference.Name().Short()
		if _, resolveError := repository.repository.Reference(reference.Name(), true); resolveError != nil {
			branches = append(branches, BranchResult{Name: branchName, Error: resolveError})
			return nil
		}
		branches = append(branches, BranchResult{Name: branchName})
		return nil
	})
	if iterationError != nil {
		return nil, fmt.Errorf(branchesErrorTemplateConstant, repository.path, iterationError)
	}
	return branches, nil
}

// Remotes lists the configured remotes ordered by name.
func (repository *goGitRepository) Remotes() ([]RemoteReference, error) {
	remotes, remotesError := repository.repository.Remotes()
	if remotesError != nil {
		return nil, fmt.Errorf(remotesErrorTemplateConstant, repository.path, remotesError)
	}

	references := make([]RemoteReference, 0, len(remotes))
	for _, remote := range remotes {
		remoteConfiguration := remote.Config()
		if remoteConfiguration == nil {
			references = append(references, RemoteReference{})
			continue
		}
		references = append(references, RemoteReference{Name: remoteConfiguration.Name, URLs: append([]string(nil), remoteConfiguration.URLs...)})
	}
	slices.SortStableFunc(references, func(left RemoteReference, right RemoteReference) int {
		return strings.Compare(left.Name, right.Name)
	})
	return references, nil
}

// Fetch updates remote-tracking refs for the listed branches without credentials.
// An up-to-date remote counts as success.
func (repository *goGitRepository) Fetch(executionContext context.Context, remoteName string, branchNames []string) error {
	if len(strings.TrimSpace(remoteName)) == 0 {
		return ErrRemoteNameRequired
	}

	remote, remoteError := repository.repository.Remote(remoteName)
	if remoteError != nil {
		return fmt.Errorf(remoteLookupErrorTemplateConstant, remoteName, repository.path, remoteError)
	}

	fetchError := remote.FetchContext(executionContext, &git.FetchOptions{
		RemoteName: remoteName,
		RefSpecs:   BranchRefSpecs(remoteName, branchNames),
	})
	if fetchError != nil && !errors.Is(fetchError, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf(fetchErrorTemplateConstant, repository.path, remoteName, fetchError)
	}
	return nil
}

// BranchRefSpecs maps each local branch to its remote-tracking ref. An empty
// branch list yields no refspecs, so the remote's configured refspecs apply.
func BranchRefSpecs(remoteName string, branchNames []string) []config.RefSpec {
	if len(branchNames) == 0 {
		return nil
	}
	refSpecs := make([]config.RefSpec, 0, len(branchNames))
	for _, branchName := range branchNames {
		refSpecs = append(refSpecs, config.RefSpec(fmt.Sprintf(branchRefSpecTemplateConstant, branchName, remoteName, branchName)))
	}
	return refSpecs
}

// ResolvedBranchNames keeps the branch names that resolved and drops the rest.
func ResolvedBranchNames(branches []BranchResult) []string {
	branchNames := make([]string, 0, len(branches))
	for _, branch := range branches {
		if branch.Error != nil || len(branch.Name) == 0 {
			continue
		}
		branchNames = append(branchNames, branch.Name)
	}
	return branchNames
}

// NamedRemotes keeps the remotes that carry a name.
func NamedRemotes(remotes []RemoteReference) []string {
	remoteNames := make([]string, 0, len(remotes))
	for _, remote := range remotes {
		if len(strings.TrimSpace(remote.Name)) == 0 {
			continue
		}
		remoteNames = append(remoteNames, remote.Name)
	}
	return remoteNames
}

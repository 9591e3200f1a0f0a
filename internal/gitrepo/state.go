package gitrepo

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

const (
	mergeHeadMarkerConstant         = "MERGE_HEAD"
	rebaseMergeMarkerConstant       = "rebase-merge"
	rebaseApplyMarkerConstant       = "rebase-apply"
	cherryPickHeadMarkerConstant    = "CHERRY_PICK_HEAD"
	revertHeadMarkerConstant        = "REVERT_HEAD"
	bisectLogMarkerConstant         = "BISECT_LOG"
	stateMarkerErrorTemplate        = "unable to inspect %s: %w"
	stateCleanLabelConstant         = "clean"
	stateMergingLabelConstant       = "merging"
	stateRebasingLabelConstant      = "rebasing"
	stateCherryPickingLabelConstant = "cherry-picking"
	stateRevertingLabelConstant     = "reverting"
	stateBisectingLabelConstant     = "bisecting"
)

// RepositoryState names an in-progress operation recorded in the git directory.
type RepositoryState int

// Recognized repository states.
const (
	StateClean RepositoryState = iota
	StateMerging
	StateRebasing
	StateCherryPicking
	StateReverting
	StateBisecting
)

// String returns a short lowercase label.
func (state RepositoryState) String() string {
	switch state {
	case StateMerging:
		return stateMergingLabelConstant
	case StateRebasing:
		return stateRebasingLabelConstant
	case StateCherryPicking:
		return stateCherryPickingLabelConstant
	case StateReverting:
		return stateRevertingLabelConstant
	case StateBisecting:
		return stateBisectingLabelConstant
	default:
		return stateCleanLabelConstant
	}
}

// IsClean reports whether no operation is in progress.
func (state RepositoryState) IsClean() bool {
	return state == StateClean
}

type stateMarker struct {
	name  string
	state RepositoryState
}

// Checked in order; the first marker present wins.
var stateMarkers = []stateMarker{
	{name: rebaseMergeMarkerConstant, state: StateRebasing},
	{name: rebaseApplyMarkerConstant, state: StateRebasing},
	{name: mergeHeadMarkerConstant, state: StateMerging},
	{name: cherryPickHeadMarkerConstant, state: StateCherryPicking},
	{name: revertHeadMarkerConstant, state: StateReverting},
	{name: bisectLogMarkerConstant, state: StateBisecting},
}

func detectRepositoryState(repository *git.Repository) (RepositoryState, error) {
	storage, isFilesystemStorage := repository.Storer.(*filesystem.Storage)
	if !isFilesystemStorage {
		return StateClean, nil
	}
	return detectStateInGitDirectory(storage.Filesystem())
}

func detectStateInGitDirectory(gitDirectory billy.Filesystem) (RepositoryState, error) {
	for _, marker := range stateMarkers {
		_, statError := gitDirectory.Stat(marker.name)
		if statError == nil {
			return marker.state, nil
		}
		if !errors.Is(statError, os.ErrNotExist) {
			return StateClean, fmt.Errorf(stateMarkerErrorTemplate, marker.name, statError)
		}
	}
	return StateClean, nil
}

package discover

import "github.com/temirov/reposcan/internal/repos/shared"

const scanningLineTemplateConstant = "scanning %q ...\n"

// ProgressTraversalObserver prints each scanned directory for verbose runs.
type ProgressTraversalObserver struct {
	reporter shared.Reporter
}

// NewProgressTraversalObserver constructs an observer printing through reporter.
func NewProgressTraversalObserver(reporter shared.Reporter) *ProgressTraversalObserver {
	return &ProgressTraversalObserver{reporter: reporter}
}

// DirectoryScanned implements discovery.TraversalObserver.
func (observer *ProgressTraversalObserver) DirectoryScanned(directoryPath string, depth int) {
	if observer == nil || observer.reporter == nil {
		return
	}
	observer.reporter.Printf(scanningLineTemplateConstant, directoryPath)
}

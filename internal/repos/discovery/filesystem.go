package discovery

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/temirov/reposcan/internal/repos/shared"
)

const (
	readDirectoryErrorTemplateConstant    = "unable to read directory %s: %w"
	resolveDirectoryErrorTemplateConstant = "unable to resolve directory %s: %w"
	readMarkerErrorTemplateConstant       = "unable to read exclusion marker %s: %w"
	markerLineSeparatorConstant           = "\n"
	carriageReturnConstant                = "\r"
)

// DirectoryReader exposes the filesystem operations the scanner needs.
type DirectoryReader interface {
	ReadDir(path string) ([]fs.DirEntry, error)
	ReadFile(path string) ([]byte, error)
	Stat(path string) (fs.FileInfo, error)
	EvalSymlinks(path string) (string, error)
}

// TraversalObserver is notified once for every directory the scanner lists.
type TraversalObserver interface {
	DirectoryScanned(directoryPath string, depth int)
}

// ScannerOptions tunes traversal.
type ScannerOptions struct {
	// MarkerFileName names the exclusion list honored in each directory.
	MarkerFileName string
	// MaxDepth bounds descent below a root; zero means unlimited.
	MaxDepth int
}

// FilesystemRepositoryDiscoverer locates git repositories on disk.
//
// A directory holding a .git directory is reported and never searched further,
// so repositories nested inside another repository are not discovered.
type FilesystemRepositoryDiscoverer struct {
	directoryReader DirectoryReader
	options         ScannerOptions
	observers       []TraversalObserver
}

// NewFilesystemRepositoryDiscoverer constructs a discoverer reading through the provided directory reader.
func NewFilesystemRepositoryDiscoverer(directoryReader DirectoryReader, options ScannerOptions, observers ...TraversalObserver) *FilesystemRepositoryDiscoverer {
	if len(strings.TrimSpace(options.MarkerFileName)) == 0 {
		options.MarkerFileName = shared.DefaultExclusionMarkerFileNameConstant
	}
	if options.MaxDepth < 0 {
		options.MaxDepth = 0
	}

	activeObservers := make([]TraversalObserver, 0, len(observers))
	for _, observer := range observers {
		if observer != nil {
			activeObservers = append(activeObservers, observer)
		}
	}

	return &FilesystemRepositoryDiscoverer{
		directoryReader: directoryReader,
		options:         options,
		observers:       activeObservers,
	}
}

// DiscoverRepositories walks the provided roots and returns the sorted repository roots beneath them.
// Any directory that cannot be read aborts the whole scan.
func (discoverer *FilesystemRepositoryDiscoverer) DiscoverRepositories(roots []string) ([]string, error) {
	traversal := &directoryTraversal{
		discoverer:   discoverer,
		visitedPaths: make(map[string]struct{}),
	}

	for _, root := range roots {
		if scanError := traversal.scan(filepath.Clean(root), 0); scanError != nil {
			return nil, scanError
		}
	}

	sort.Strings(traversal.repositories)
	return traversal.repositories, nil
}

type directoryTraversal struct {
	discoverer   *FilesystemRepositoryDiscoverer
	visitedPaths map[string]struct{}
	repositories []string
}

type directoryListing struct {
	isRepositoryRoot bool
	childDirectories []string
	excludedNames    map[string]struct{}
}

func (traversal *directoryTraversal) scan(directoryPath string, depth int) error {
	realPath, resolveError := traversal.discoverer.directoryReader.EvalSymlinks(directoryPath)
	if resolveError != nil {
		return fmt.Errorf(resolveDirectoryErrorTemplateConstant, directoryPath, resolveError)
	}
	if _, visited := traversal.visitedPaths[realPath]; visited {
		return nil
	}
	traversal.visitedPaths[realPath] = struct{}{}

	for _, observer := range traversal.discoverer.observers {
		observer.DirectoryScanned(directoryPath, depth)
	}

	listing, listingError := traversal.list(directoryPath)
	if listingError != nil {
		return listingError
	}

	if listing.isRepositoryRoot {
		traversal.repositories = append(traversal.repositories, directoryPath)
		return nil
	}

	maxDepth := traversal.discoverer.options.MaxDepth
	if maxDepth > 0 && depth >= maxDepth {
		return nil
	}

	for _, childName := range listing.childDirectories {
		if _, excluded := listing.excludedNames[childName]; excluded {
			continue
		}
		if scanError := traversal.scan(filepath.Join(directoryPath, childName), depth+1); scanError != nil {
			return scanError
		}
	}

	return nil
}

// list classifies the entries of one directory. Exclusions apply to the whole
// listing, wherever the marker appears in it.
func (traversal *directoryTraversal) list(directoryPath string) (directoryListing, error) {
	directoryReader := traversal.discoverer.directoryReader
	entries, readError := directoryReader.ReadDir(directoryPath)
	if readError != nil {
		return directoryListing{}, fmt.Errorf(readDirectoryErrorTemplateConstant, directoryPath, readError)
	}

	listing := directoryListing{excludedNames: make(map[string]struct{})}
	for _, entry := range entries {
		entryName := entry.Name()
		if !utf8.ValidString(entryName) {
			continue
		}

		entryPath := filepath.Join(directoryPath, entryName)
		if entryName == traversal.discoverer.options.MarkerFileName && traversal.isRegularFile(entry, entryPath) {
			excludedNames, markerError := traversal.readMarker(entryPath)
			if markerError != nil {
				return directoryListing{}, markerError
			}
			for _, excludedName := range excludedNames {
				listing.excludedNames[excludedName] = struct{}{}
			}
			continue
		}

		if !traversal.isDirectory(entry, entryPath) {
			continue
		}

		if entryName == shared.GitMetadataDirectoryNameConstant {
			return directoryListing{isRepositoryRoot: true}, nil
		}
		listing.childDirectories = append(listing.childDirectories, entryName)
	}

	return listing, nil
}

// isDirectory follows symbolic links; dangling links are not directories.
func (traversal *directoryTraversal) isDirectory(entry fs.DirEntry, entryPath string) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	targetInfo, statError := traversal.discoverer.directoryReader.Stat(entryPath)
	if statError != nil {
		return false
	}
	return targetInfo.IsDir()
}

// isRegularFile follows symbolic links so a linked marker is honored.
func (traversal *directoryTraversal) isRegularFile(entry fs.DirEntry, entryPath string) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	targetInfo, statError := traversal.discoverer.directoryReader.Stat(entryPath)
	if statError != nil {
		return false
	}
	return targetInfo.Mode().IsRegular()
}

func (traversal *directoryTraversal) readMarker(markerPath string) ([]string, error) {
	markerContents, readError := traversal.discoverer.directoryReader.ReadFile(markerPath)
	if readError != nil {
		return nil, fmt.Errorf(readMarkerErrorTemplateConstant, markerPath, readError)
	}
	return parseExclusionMarker(string(markerContents)), nil
}

func parseExclusionMarker(markerContents string) []string {
	var excludedNames []string
	for _, line := range strings.Split(markerContents, markerLineSeparatorConstant) {
		trimmedLine := strings.TrimSuffix(line, carriageReturnConstant)
		if len(trimmedLine) == 0 {
			continue
		}
		excludedNames = append(excludedNames, trimmedLine)
	}
	return excludedNames
}

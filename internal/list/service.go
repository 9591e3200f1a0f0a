package list

import (
	"errors"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/temirov/reposcan/internal/registry"
	"github.com/temirov/reposcan/internal/repos/shared"
)

const (
	reporterNotConfiguredMessageConstant = "list reporter not configured"
	pathLineTemplateConstant             = "%s\n"
)

// ErrReporterNotConfigured indicates the service was created without a reporter.
var ErrReporterNotConfigured = errors.New(reporterNotConfiguredMessageConstant)

// Options selects which repositories are listed.
type Options struct {
	WorkingDirectory string
	Global           bool
	Pattern          string
}

// Listing is the outcome of one list invocation.
type Listing struct {
	RepositoryPaths []string
	// IgnoredCount is the number of registered repositories outside the working directory; zero for global listings.
	IgnoredCount int
}

type pathSource []string

func (source pathSource) String(index int) string { return source[index] }

func (source pathSource) Len() int { return len(source) }

// Service prints registry entries.
type Service struct {
	reporter shared.Reporter
}

// NewService constructs a Service printing through reporter.
func NewService(reporter shared.Reporter) (*Service, error) {
	if reporter == nil {
		return nil, ErrReporterNotConfigured
	}
	return &Service{reporter: reporter}, nil
}

// Run prints the selected repositories, one per line.
func (service *Service) Run(knownRegistry registry.Registry, options Options) Listing {
	listing := Listing{}
	if options.Global {
		listing.RepositoryPaths = knownRegistry.Paths()
	} else {
		scope := knownRegistry.Scope(options.WorkingDirectory)
		listing.RepositoryPaths = scope.RepositoryPaths
		listing.IgnoredCount = scope.IgnoredCount
	}

	listing.RepositoryPaths = FilterPaths(listing.RepositoryPaths, options.Pattern)
	for _, repositoryPath := range listing.RepositoryPaths {
		service.reporter.Printf(pathLineTemplateConstant, repositoryPath)
	}
	return listing
}

// FilterPaths keeps the paths fuzzily matching pattern, best match first.
// A blank pattern returns the paths unchanged.
func FilterPaths(repositoryPaths []string, pattern string) []string {
	trimmedPattern := strings.TrimSpace(pattern)
	if len(trimmedPattern) == 0 {
		return repositoryPaths
	}
	matches := fuzzy.FindFrom(trimmedPattern, pathSource(repositoryPaths))
	filteredPaths := make([]string, 0, len(matches))
	for _, match := range matches {
		filteredPaths = append(filteredPaths, repositoryPaths[match.Index])
	}
	return filteredPaths
}

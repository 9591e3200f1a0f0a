package status

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/reposcan/internal/gitrepo"
	"github.com/temirov/reposcan/internal/registry"
	"github.com/temirov/reposcan/internal/repos/shared"
	"github.com/temirov/reposcan/internal/ui"
)

const (
	openerNotConfiguredMessageConstant   = "repository opener not configured"
	reporterNotConfiguredMessageConstant = "status reporter not configured"
	stateErrorTemplateConstant           = "unable to read state of %s: %w"
	cleanLabelConstant                   = "[clean]"
	uncleanLabelTemplateConstant         = "[unclean, %d file(s)]"
	reportLineTemplateConstant           = "%s %s\n"
	inspectedMessageConstant             = "repository inspected"
	repositoryPathFieldConstant          = "repository_path"
	repositoryStateFieldConstant         = "repository_state"
	changedEntriesFieldConstant          = "changed_entries"
)

// ErrRepositoryOpenerNotConfigured indicates the service was created without an opener.
var ErrRepositoryOpenerNotConfigured = errors.New(openerNotConfiguredMessageConstant)

// ErrReporterNotConfigured indicates the service was created without a reporter.
var ErrReporterNotConfigured = errors.New(reporterNotConfiguredMessageConstant)

// Report is the classification of one repository.
type Report struct {
	Path           string
	State          gitrepo.RepositoryState
	ChangedEntries int
}

// Clean reports whether no operation is in progress and nothing changed.
func (report Report) Clean() bool {
	return report.State.IsClean() && report.ChangedEntries == 0
}

// Label renders the bracketed classification used in command output.
func (report Report) Label() string {
	if report.Clean() {
		return cleanLabelConstant
	}
	return fmt.Sprintf(uncleanLabelTemplateConstant, report.ChangedEntries)
}

// Dependencies wires a Service.
type Dependencies struct {
	Opener   gitrepo.Opener
	Reporter shared.Reporter
	Styler   ui.OutputStyler
	Logger   *zap.Logger
}

// Service inspects scoped repositories.
type Service struct {
	opener   gitrepo.Opener
	reporter shared.Reporter
	styler   ui.OutputStyler
	logger   *zap.Logger
}

// NewService validates dependencies and constructs a Service.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Opener == nil {
		return nil, ErrRepositoryOpenerNotConfigured
	}
	if dependencies.Reporter == nil {
		return nil, ErrReporterNotConfigured
	}
	styler := dependencies.Styler
	if styler == nil {
		styler = ui.PlainOutputStyler{}
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{opener: dependencies.Opener, reporter: dependencies.Reporter, styler: styler, logger: logger}, nil
}

// Run prints one line per scoped repository. The first repository that cannot be read aborts the run.
func (service *Service) Run(executionContext context.Context, scope registry.Scope) ([]Report, error) {
	reports := make([]Report, 0, scope.Len())
	for _, repositoryPath := range scope.RepositoryPaths {
		if contextError := executionContext.Err(); contextError != nil {
			return reports, contextError
		}

		report, inspectionError := service.Inspect(repositoryPath)
		if inspectionError != nil {
			return reports, inspectionError
		}

		reports = append(reports, report)
		service.reporter.Printf(reportLineTemplateConstant, service.styleLabel(report), repositoryPath)
	}
	return reports, nil
}

// Inspect classifies a single repository.
func (service *Service) Inspect(repositoryPath string) (Report, error) {
	repository, openError := service.opener.Open(repositoryPath)
	if openError != nil {
		return Report{}, openError
	}

	state, stateError := repository.State()
	if stateError != nil {
		return Report{}, fmt.Errorf(stateErrorTemplateConstant, repositoryPath, stateError)
	}

	changedEntries, countError := repository.ChangedEntryCount()
	if countError != nil {
		return Report{}, countError
	}

	report := Report{Path: repositoryPath, State: state, ChangedEntries: changedEntries}
	service.logger.Debug(
		inspectedMessageConstant,
		zap.String(repositoryPathFieldConstant, repositoryPath),
		zap.Stringer(repositoryStateFieldConstant, state),
		zap.Int(changedEntriesFieldConstant, changedEntries),
	)
	return report, nil
}

func (service *Service) styleLabel(report Report) string {
	if report.Clean() {
		return service.styler.Clean(report.Label())
	}
	return service.styler.Unclean(report.Label())
}

package fetch

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/reposcan/internal/execshell"
	"github.com/temirov/reposcan/internal/gitrepo"
	"github.com/temirov/reposcan/internal/registry"
	"github.com/temirov/reposcan/internal/repos/shared"
	"github.com/temirov/reposcan/internal/ui"
)

const (
	openerNotConfiguredMessageConstant   = "repository opener not configured"
	executorNotConfiguredMessageConstant = "git executor not configured"
	reporterNotConfiguredMessageConstant = "fetch reporter not configured"
	gitFetchSubcommandConstant           = "fetch"
	repositoryLineTemplateConstant       = "fetching %q\n"
	remoteLineTemplateConstant           = "  %s: %s\n"
	directFetchFailedMessageConstant     = "direct fetch failed"
	fallbackDisabledMessageConstant      = "direct fetch failed and fallback is disabled"
	remoteFetchedMessageConstant         = "remote fetched"
	repositoryPathFieldConstant          = "repository_path"
	remoteNameFieldConstant              = "remote_name"
	branchCountFieldConstant             = "branch_count"
	outcomeFieldConstant                 = "outcome"
)

// ErrRepositoryOpenerNotConfigured indicates the service was created without an opener.
var ErrRepositoryOpenerNotConfigured = errors.New(openerNotConfiguredMessageConstant)

// ErrGitExecutorNotConfigured indicates the service was created without a fallback executor.
var ErrGitExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// ErrReporterNotConfigured indicates the service was created without a reporter.
var ErrReporterNotConfigured = errors.New(reporterNotConfiguredMessageConstant)

// Dependencies wires a Service.
type Dependencies struct {
	Opener        gitrepo.Opener
	GitExecutor   shared.GitExecutor
	Reporter      shared.Reporter
	Styler        ui.OutputStyler
	Logger        *zap.Logger
	Configuration Configuration
}

// Service fetches every remote of every scoped repository.
type Service struct {
	opener        gitrepo.Opener
	gitExecutor   shared.GitExecutor
	reporter      shared.Reporter
	styler        ui.OutputStyler
	logger        *zap.Logger
	configuration Configuration
}

// NewService validates dependencies and constructs a Service.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Opener == nil {
		return nil, ErrRepositoryOpenerNotConfigured
	}
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
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
	return &Service{
		opener:        dependencies.Opener,
		gitExecutor:   dependencies.GitExecutor,
		reporter:      dependencies.Reporter,
		styler:        styler,
		logger:        logger,
		configuration: dependencies.Configuration.Sanitize(),
	}, nil
}

// Run fetches each scoped repository in order. Remote failures are recorded and
// reported; failing to open a repository or enumerate its branches or remotes aborts the run.
func (service *Service) Run(executionContext context.Context, scope registry.Scope) ([]RepositoryResult, error) {
	results := make([]RepositoryResult, 0, scope.Len())
	for _, repositoryPath := range scope.RepositoryPaths {
		if contextError := executionContext.Err(); contextError != nil {
			return results, contextError
		}

		result, repositoryError := service.FetchRepository(executionContext, repositoryPath)
		if repositoryError != nil {
			return results, repositoryError
		}
		results = append(results, result)
	}
	return results, nil
}

// FetchRepository fetches every named remote of one repository.
func (service *Service) FetchRepository(executionContext context.Context, repositoryPath string) (RepositoryResult, error) {
	repository, openError := service.opener.Open(repositoryPath)
	if openError != nil {
		return RepositoryResult{}, openError
	}

	service.reporter.Printf(repositoryLineTemplateConstant, repositoryPath)

	branches, branchesError := repository.LocalBranches()
	if branchesError != nil {
		return RepositoryResult{}, branchesError
	}
	remotes, remotesError := repository.Remotes()
	if remotesError != nil {
		return RepositoryResult{}, remotesError
	}

	result := RepositoryResult{Path: repositoryPath, Branches: gitrepo.ResolvedBranchNames(branches)}
	for _, remoteName := range gitrepo.NamedRemotes(remotes) {
		outcome := service.fetchRemote(executionContext, repository, remoteName, result.Branches)
		result.Remotes = append(result.Remotes, RemoteOutcome{Remote: remoteName, Outcome: outcome})
		service.reporter.Printf(remoteLineTemplateConstant, remoteName, service.styleOutcome(outcome))
		service.logger.Debug(
			remoteFetchedMessageConstant,
			zap.String(repositoryPathFieldConstant, repositoryPath),
			zap.String(remoteNameFieldConstant, remoteName),
			zap.Int(branchCountFieldConstant, len(result.Branches)),
			zap.String(outcomeFieldConstant, outcome.Describe()),
		)
	}
	return result, nil
}

func (service *Service) fetchRemote(executionContext context.Context, repository gitrepo.Repository, remoteName string, branchNames []string) Outcome {
	directContext, cancelDirect := service.attemptContext(executionContext)
	directError := repository.Fetch(directContext, remoteName, branchNames)
	cancelDirect()
	if directError == nil {
		return DirectSuccess()
	}

	if !service.configuration.FallbackEnabled {
		service.logger.Warn(
			fallbackDisabledMessageConstant,
			zap.String(repositoryPathFieldConstant, repository.Path()),
			zap.String(remoteNameFieldConstant, remoteName),
			zap.Error(directError),
		)
		return Failure(directError.Error(), unknownExitCodeConstant)
	}

	service.logger.Debug(
		directFetchFailedMessageConstant,
		zap.String(repositoryPathFieldConstant, repository.Path()),
		zap.String(remoteNameFieldConstant, remoteName),
		zap.Error(directError),
	)
	return service.fallbackFetch(executionContext, repository.Path(), remoteName)
}

func (service *Service) fallbackFetch(executionContext context.Context, repositoryPath string, remoteName string) Outcome {
	fallbackContext, cancelFallback := service.attemptContext(executionContext)
	defer cancelFallback()

	executionResult, executionError := service.gitExecutor.ExecuteGit(fallbackContext, execshell.CommandDetails{
		Arguments:        []string{gitFetchSubcommandConstant, remoteName},
		WorkingDirectory: repositoryPath,
	})
	if executionError == nil {
		return FallbackSuccess(executionResult.ExitCode)
	}

	var failedError execshell.CommandFailedError
	if errors.As(executionError, &failedError) {
		diagnostic := strings.TrimSpace(failedError.Result.StandardError)
		if len(diagnostic) == 0 {
			diagnostic = failedError.Error()
		}
		return Failure(diagnostic, failedError.Result.ExitCode)
	}
	return Failure(executionError.Error(), unknownExitCodeConstant)
}

func (service *Service) attemptContext(executionContext context.Context) (context.Context, context.CancelFunc) {
	if service.configuration.RemoteTimeout <= 0 {
		return context.WithCancel(executionContext)
	}
	return context.WithTimeout(executionContext, service.configuration.RemoteTimeout)
}

func (service *Service) styleOutcome(outcome Outcome) string {
	if outcome.Succeeded() {
		return service.styler.Success(outcome.Describe())
	}
	return service.styler.Failure(outcome.Describe())
}

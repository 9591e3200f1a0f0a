package discover

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/temirov/reposcan/internal/reconcile"
	"github.com/temirov/reposcan/internal/registry"
	"github.com/temirov/reposcan/internal/repos/shared"
	"github.com/temirov/reposcan/internal/ui"
)

const (
	discovererNotConfiguredMessageConstant = "repository discoverer not configured"
	storeNotConfiguredMessageConstant      = "registry store not configured"
	reporterNotConfiguredMessageConstant   = "discover reporter not configured"
	addedLineTemplateConstant              = "Added new repository: \"%s\"\n"
	removedLineTemplateConstant            = "Removed obsolete repository: \"%s\"\n"
	newHeaderConstant                      = "NEW repositories:"
	obsoleteHeaderConstant                 = "OBSOLETE repositories:"
	headerLineTemplateConstant             = "%s\n"
	pathLineTemplateConstant               = "%s\n"
	blankLineConstant                      = "\n"
	reconciledMessageConstant              = "registry reconciled"
	registrySavedMessageConstant           = "registry saved"
	workingDirectoryFieldConstant          = "working_directory"
	discoveredCountFieldConstant           = "discovered_count"
	newCountFieldConstant                  = "new_count"
	obsoleteCountFieldConstant             = "obsolete_count"
	addedCountFieldConstant                = "added_count"
	removedCountFieldConstant              = "removed_count"
	registrySizeFieldConstant              = "registry_size"
)

// ErrDiscovererNotConfigured indicates the service was created without a discoverer.
var ErrDiscovererNotConfigured = errors.New(discovererNotConfiguredMessageConstant)

// ErrRegistryStoreNotConfigured indicates the service was created without a registry store.
var ErrRegistryStoreNotConfigured = errors.New(storeNotConfiguredMessageConstant)

// ErrReporterNotConfigured indicates the service was created without a reporter.
var ErrReporterNotConfigured = errors.New(reporterNotConfiguredMessageConstant)

// Options describes one discover invocation.
type Options struct {
	WorkingDirectory string
	Policy           reconcile.EditPolicy
}

// Summary is the outcome of one discover invocation.
type Summary struct {
	Scope          registry.Scope
	Reconciliation reconcile.Result
}

// Dependencies wires a Service.
type Dependencies struct {
	Discoverer    shared.RepositoryDiscoverer
	RegistryStore shared.RegistryStore
	Reporter      shared.Reporter
	Styler        ui.OutputStyler
	Logger        *zap.Logger
}

// Service runs discovery and reconciliation.
type Service struct {
	discoverer    shared.RepositoryDiscoverer
	registryStore shared.RegistryStore
	reporter      shared.Reporter
	styler        ui.OutputStyler
	logger        *zap.Logger
}

// NewService validates dependencies and constructs a Service.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Discoverer == nil {
		return nil, ErrDiscovererNotConfigured
	}
	if dependencies.RegistryStore == nil {
		return nil, ErrRegistryStoreNotConfigured
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
		discoverer:    dependencies.Discoverer,
		registryStore: dependencies.RegistryStore,
		reporter:      dependencies.Reporter,
		styler:        styler,
		logger:        logger,
	}, nil
}

// Run scans the working directory, reconciles the registry and writes it back
// only when the policy allows edits.
func (service *Service) Run(executionContext context.Context, options Options) (Summary, error) {
	knownRegistry, loadError := service.registryStore.Load()
	if loadError != nil {
		return Summary{}, loadError
	}
	scope := knownRegistry.Scope(options.WorkingDirectory)

	discoveredPaths, discoveryError := service.discoverer.DiscoverRepositories([]string{options.WorkingDirectory})
	if discoveryError != nil {
		return Summary{}, discoveryError
	}
	if contextError := executionContext.Err(); contextError != nil {
		return Summary{}, contextError
	}

	result := reconcile.Apply(knownRegistry, discoveredPaths, scope, options.Policy)
	service.logger.Debug(
		reconciledMessageConstant,
		zap.String(workingDirectoryFieldConstant, options.WorkingDirectory),
		zap.Int(discoveredCountFieldConstant, len(discoveredPaths)),
		zap.Int(newCountFieldConstant, len(result.New)),
		zap.Int(obsoleteCountFieldConstant, len(result.Obsolete)),
		zap.Int(addedCountFieldConstant, len(result.Added)),
		zap.Int(removedCountFieldConstant, len(result.Removed)),
	)

	service.report(result)

	if result.Modified() {
		if saveError := service.registryStore.Save(result.Registry); saveError != nil {
			return Summary{}, saveError
		}
		service.logger.Debug(registrySavedMessageConstant, zap.Int(registrySizeFieldConstant, result.Registry.Len()))
	}

	return Summary{Scope: scope, Reconciliation: result}, nil
}

func (service *Service) report(result reconcile.Result) {
	if result.Policy.AddNew {
		for _, addedPath := range result.Added {
			service.reporter.Printf(addedLineTemplateConstant, service.styler.Success(addedPath))
		}
		service.reporter.Printf(blankLineConstant)
	}

	if result.Policy.PruneObsolete {
		for _, removedPath := range result.Removed {
			service.reporter.Printf(removedLineTemplateConstant, service.styler.Failure(removedPath))
		}
	}

	if result.Policy.ReadOnly() {
		service.reporter.Printf(headerLineTemplateConstant, service.styler.Emphasis(newHeaderConstant))
		for _, newPath := range result.New {
			service.reporter.Printf(pathLineTemplateConstant, newPath)
		}
		service.reporter.Printf(blankLineConstant)

		service.reporter.Printf(headerLineTemplateConstant, service.styler.Emphasis(obsoleteHeaderConstant))
		for _, obsoletePath := range result.Obsolete {
			service.reporter.Printf(pathLineTemplateConstant, obsoletePath)
		}
		service.reporter.Printf(blankLineConstant)
	}
}

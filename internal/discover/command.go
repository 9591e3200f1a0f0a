package discover

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/reposcan/internal/reconcile"
	"github.com/temirov/reposcan/internal/registry"
	"github.com/temirov/reposcan/internal/repos/dependencies"
	"github.com/temirov/reposcan/internal/repos/discovery"
	"github.com/temirov/reposcan/internal/repos/shared"
	"github.com/temirov/reposcan/internal/ui"
	"github.com/temirov/reposcan/internal/utils"
)

const (
	commandUseConstant              = "discover"
	commandShortDescriptionConstant = "Find repositories under the working directory and reconcile the registry"
	commandLongDescriptionConstant  = "discover walks the current working directory for git repositories, honoring .reposcanignore exclusion lists, and compares the result with the registered repositories under that directory. Without flags it lists NEW and OBSOLETE repositories; --add registers new ones and --prune forgets obsolete ones."
	addFlagNameConstant             = "add"
	addFlagShorthandConstant        = "a"
	addFlagUsageConstant            = "Add all newly discovered repositories to the registry."
	pruneFlagNameConstant           = "prune"
	pruneFlagShorthandConstant      = "p"
	pruneFlagUsageConstant          = "Remove registered repositories that no longer exist under the working directory."
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the discovery settings.
type ConfigurationProvider func() Configuration

// RegistryConfigurationProvider supplies the registry settings.
type RegistryConfigurationProvider func() registry.Configuration

// CommandBuilder assembles the discover cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider                LoggerProvider
	ConfigurationProvider         ConfigurationProvider
	RegistryConfigurationProvider RegistryConfigurationProvider
	FileSystem                    shared.FileSystem
	RegistryStore                 shared.RegistryStore
	Discoverer                    shared.RepositoryDiscoverer
	WorkingDirectory              string
}

// Build constructs the cobra command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	command.Flags().BoolP(addFlagNameConstant, addFlagShorthandConstant, false, addFlagUsageConstant)
	command.Flags().BoolP(pruneFlagNameConstant, pruneFlagShorthandConstant, false, pruneFlagUsageConstant)
	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	addNew, addFlagError := command.Flags().GetBool(addFlagNameConstant)
	if addFlagError != nil {
		return addFlagError
	}
	pruneObsolete, pruneFlagError := command.Flags().GetBool(pruneFlagNameConstant)
	if pruneFlagError != nil {
		return pruneFlagError
	}

	logger := builder.resolveLogger()
	fileSystem := dependencies.ResolveFileSystem(builder.FileSystem)
	contextAccessor := utils.NewCommandContextAccessor()

	workingDirectory, workingDirectoryError := dependencies.ResolveWorkingDirectory(builder.resolveWorkingDirectory(command, contextAccessor), fileSystem)
	if workingDirectoryError != nil {
		return workingDirectoryError
	}

	store, storeError := dependencies.ResolveRegistryStore(builder.RegistryStore, fileSystem, builder.resolveRegistryConfiguration(), nil, logger)
	if storeError != nil {
		return storeError
	}

	reporter := shared.NewWriterReporter(command.OutOrStdout())
	observers := []discovery.TraversalObserver{discovery.NewLoggingTraversalObserver(logger)}
	if contextAccessor.VerboseOutput(command.Context()) {
		observers = append(observers, NewProgressTraversalObserver(reporter))
	}
	discoverer := dependencies.ResolveRepositoryDiscoverer(builder.Discoverer, fileSystem, builder.resolveConfiguration().ScannerOptions(), observers...)

	service, serviceError := NewService(Dependencies{
		Discoverer:    discoverer,
		RegistryStore: store,
		Reporter:      reporter,
		Styler:        ui.NewOutputStyler(command.OutOrStdout()),
		Logger:        logger,
	})
	if serviceError != nil {
		return serviceError
	}

	summary, runError := service.Run(command.Context(), Options{
		WorkingDirectory: workingDirectory,
		Policy:           reconcile.EditPolicy{AddNew: addNew, PruneObsolete: pruneObsolete},
	})
	if runError != nil {
		return runError
	}

	reporter.Printf("%s", shared.FormatIgnoredRepositoriesNotice(summary.Scope.IgnoredCount))
	return nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	if builder.ConfigurationProvider == nil {
		return DefaultConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveRegistryConfiguration() registry.Configuration {
	if builder.RegistryConfigurationProvider == nil {
		return registry.DefaultConfiguration()
	}
	return builder.RegistryConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveWorkingDirectory(command *cobra.Command, contextAccessor utils.CommandContextAccessor) string {
	if len(builder.WorkingDirectory) > 0 {
		return builder.WorkingDirectory
	}
	workingDirectory, _ := contextAccessor.WorkingDirectory(command.Context())
	return workingDirectory
}

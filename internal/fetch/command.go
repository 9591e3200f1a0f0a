package fetch

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/reposcan/internal/gitrepo"
	"github.com/temirov/reposcan/internal/registry"
	"github.com/temirov/reposcan/internal/repos/dependencies"
	"github.com/temirov/reposcan/internal/repos/shared"
	"github.com/temirov/reposcan/internal/ui"
	"github.com/temirov/reposcan/internal/utils"
)

const (
	commandUseConstant              = "fetch"
	commandShortDescriptionConstant = "Fetch every remote of the repositories under the working directory"
	commandLongDescriptionConstant  = "fetch updates the remote-tracking branches of each registered repository under the current working directory. Every remote is fetched in-process first; when that fails git fetch <remote> runs once in the repository so configured credential helpers apply. A failing remote is reported and the batch continues."
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the fetch settings.
type ConfigurationProvider func() Configuration

// RegistryConfigurationProvider supplies the registry settings.
type RegistryConfigurationProvider func() registry.Configuration

// CommandBuilder assembles the fetch cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider                LoggerProvider
	HumanReadableLoggingProvider  func() bool
	ConfigurationProvider         ConfigurationProvider
	RegistryConfigurationProvider RegistryConfigurationProvider
	FileSystem                    shared.FileSystem
	RegistryStore                 shared.RegistryStore
	RepositoryOpener              gitrepo.Opener
	GitExecutor                   shared.GitExecutor
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
	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	logger := builder.resolveLogger()
	fileSystem := dependencies.ResolveFileSystem(builder.FileSystem)

	workingDirectory, workingDirectoryError := dependencies.ResolveWorkingDirectory(builder.resolveWorkingDirectory(command), fileSystem)
	if workingDirectoryError != nil {
		return workingDirectoryError
	}

	store, storeError := dependencies.ResolveRegistryStore(builder.RegistryStore, fileSystem, builder.resolveRegistryConfiguration(), nil, logger)
	if storeError != nil {
		return storeError
	}

	knownRegistry, loadError := store.Load()
	if loadError != nil {
		return loadError
	}
	scope := knownRegistry.Scope(workingDirectory)

	gitExecutor, executorError := dependencies.ResolveGitExecutor(builder.GitExecutor, logger, builder.humanReadableLogging())
	if executorError != nil {
		return executorError
	}

	reporter := shared.NewWriterReporter(command.OutOrStdout())
	service, serviceError := NewService(Dependencies{
		Opener:        dependencies.ResolveRepositoryOpener(builder.RepositoryOpener),
		GitExecutor:   gitExecutor,
		Reporter:      reporter,
		Styler:        ui.NewOutputStyler(command.OutOrStdout()),
		Logger:        logger,
		Configuration: builder.resolveConfiguration(),
	})
	if serviceError != nil {
		return serviceError
	}

	if _, runError := service.Run(command.Context(), scope); runError != nil {
		return runError
	}

	reporter.Printf("%s", shared.FormatIgnoredRepositoriesNotice(scope.IgnoredCount))
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

func (builder *CommandBuilder) humanReadableLogging() bool {
	if builder.HumanReadableLoggingProvider == nil {
		return false
	}
	return builder.HumanReadableLoggingProvider()
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

func (builder *CommandBuilder) resolveWorkingDirectory(command *cobra.Command) string {
	if len(builder.WorkingDirectory) > 0 {
		return builder.WorkingDirectory
	}
	workingDirectory, _ := utils.NewCommandContextAccessor().WorkingDirectory(command.Context())
	return workingDirectory
}

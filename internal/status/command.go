package status

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
	commandUseConstant              = "status"
	commandShortDescriptionConstant = "Report clean or unclean state of repositories under the working directory"
	commandLongDescriptionConstant  = "status inspects every registered repository under the current working directory and prints [clean] or [unclean, N file(s)] followed by its path. A repository is unclean when a merge, rebase, cherry-pick, revert or bisect is in progress or when working-tree entries changed."
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// RegistryConfigurationProvider supplies the registry settings.
type RegistryConfigurationProvider func() registry.Configuration

// CommandBuilder assembles the status cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider                LoggerProvider
	RegistryConfigurationProvider RegistryConfigurationProvider
	FileSystem                    shared.FileSystem
	RegistryStore                 shared.RegistryStore
	RepositoryOpener              gitrepo.Opener
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

	reporter := shared.NewWriterReporter(command.OutOrStdout())
	service, serviceError := NewService(Dependencies{
		Opener:   dependencies.ResolveRepositoryOpener(builder.RepositoryOpener),
		Reporter: reporter,
		Styler:   ui.NewOutputStyler(command.OutOrStdout()),
		Logger:   logger,
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

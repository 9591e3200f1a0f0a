package list

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/reposcan/internal/registry"
	"github.com/temirov/reposcan/internal/repos/dependencies"
	"github.com/temirov/reposcan/internal/repos/shared"
	"github.com/temirov/reposcan/internal/utils"
)

const (
	commandUseConstant              = "list [pattern]"
	commandShortDescriptionConstant = "List registered repositories"
	commandLongDescriptionConstant  = "list prints the registered repositories under the current working directory, or every registered repository with --global. An optional pattern fuzzily filters the paths and orders them by match quality."
	globalFlagNameConstant          = "global"
	globalFlagShorthandConstant     = "g"
	globalFlagUsageConstant         = "List every registered repository regardless of the working directory."
	listedMessageConstant           = "repositories listed"
	listedCountFieldConstant        = "listed_count"
	globalFieldConstant             = "global"
	patternFieldConstant            = "pattern"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// RegistryConfigurationProvider supplies the registry settings.
type RegistryConfigurationProvider func() registry.Configuration

// CommandBuilder assembles the list cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider                LoggerProvider
	RegistryConfigurationProvider RegistryConfigurationProvider
	FileSystem                    shared.FileSystem
	RegistryStore                 shared.RegistryStore
	WorkingDirectory              string
}

// Build constructs the cobra command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE:  builder.run,
	}
	command.Flags().BoolP(globalFlagNameConstant, globalFlagShorthandConstant, false, globalFlagUsageConstant)
	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	global, globalFlagError := command.Flags().GetBool(globalFlagNameConstant)
	if globalFlagError != nil {
		return globalFlagError
	}
	pattern := ""
	if len(arguments) > 0 {
		pattern = arguments[0]
	}

	logger := builder.resolveLogger()
	fileSystem := dependencies.ResolveFileSystem(builder.FileSystem)

	workingDirectory := ""
	if !global {
		resolvedDirectory, workingDirectoryError := dependencies.ResolveWorkingDirectory(builder.resolveWorkingDirectory(command), fileSystem)
		if workingDirectoryError != nil {
			return workingDirectoryError
		}
		workingDirectory = resolvedDirectory
	}

	store, storeError := dependencies.ResolveRegistryStore(builder.RegistryStore, fileSystem, builder.resolveRegistryConfiguration(), nil, logger)
	if storeError != nil {
		return storeError
	}

	knownRegistry, loadError := store.Load()
	if loadError != nil {
		return loadError
	}

	reporter := shared.NewWriterReporter(command.OutOrStdout())
	service, serviceError := NewService(reporter)
	if serviceError != nil {
		return serviceError
	}

	listing := service.Run(knownRegistry, Options{WorkingDirectory: workingDirectory, Global: global, Pattern: pattern})
	logger.Debug(
		listedMessageConstant,
		zap.Int(listedCountFieldConstant, len(listing.RepositoryPaths)),
		zap.Bool(globalFieldConstant, global),
		zap.String(patternFieldConstant, pattern),
	)

	reporter.Printf("%s", shared.FormatIgnoredRepositoriesNotice(listing.IgnoredCount))
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

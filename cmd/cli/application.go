package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/reposcan/internal/discover"
	"github.com/temirov/reposcan/internal/fetch"
	"github.com/temirov/reposcan/internal/list"
	"github.com/temirov/reposcan/internal/registry"
	"github.com/temirov/reposcan/internal/status"
	"github.com/temirov/reposcan/internal/utils"
	pathutils "github.com/temirov/reposcan/internal/utils/path"
)

const (
	applicationNameConstant                    = "reposcan"
	applicationShortDescriptionConstant        = "Track the git repositories on this machine"
	applicationLongDescriptionConstant         = "reposcan keeps a registry of git repositories, discovers new ones beneath the working directory, reports whether they are clean, and fetches their remotes."
	configFileFlagNameConstant                 = "config"
	configFileFlagUsageConstant                = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                   = "log-level"
	logLevelFlagUsageConstant                  = "Override the configured log level."
	logFormatFlagNameConstant                  = "log-format"
	logFormatFlagUsageConstant                 = "Override the configured log format (structured or console)."
	verboseFlagNameConstant                    = "verbose"
	verboseFlagShorthandConstant               = "v"
	verboseFlagUsageConstant                   = "Trace progress, such as every directory scanned by discover."
	versionFlagNameConstant                    = "version"
	versionFlagUsageConstant                   = "Print the reposcan version and exit."
	versionOutputTemplateConstant              = "%s version: %s\n"
	unknownVersionConstant                     = "(devel)"
	commonConfigurationKeyConstant             = "common"
	commonLogLevelConfigKeyConstant            = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant           = commonConfigurationKeyConstant + ".log_format"
	registryConfigurationKeyConstant           = "registry"
	discoveryConfigurationKeyConstant          = "discovery"
	fetchConfigurationKeyConstant              = "fetch"
	environmentPrefixConstant                  = "REPOSCAN"
	configurationNameConstant                  = "config"
	configurationTypeConstant                  = "yaml"
	configurationInitializedMessageConstant    = "configuration initialized"
	configurationLogLevelFieldConstant         = "log_level"
	configurationLogFormatFieldConstant        = "log_format"
	configurationFileFieldConstant             = "config_file"
	workingDirectoryFieldConstant              = "working_directory"
	configurationLoadErrorTemplateConstant     = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant        = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant            = "unable to flush logger: %w"
	workingDirectoryUnavailableMessageConstant = "working directory unavailable"
	loggerNotInitializedMessageConstant        = "logger not initialized"
	defaultConfigurationSearchPathConstant     = "."
	userConfigurationDirectoryPathConstant     = "~/.reposcan.d"
	rootCommandDebugMessageConstant            = "reposcan CLI diagnostics"
	logFieldCommandNameConstant                = "command_name"
	logFieldArgumentsConstant                  = "arguments"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common    ApplicationCommonConfiguration `mapstructure:"common"`
	Registry  registry.Configuration         `mapstructure:"registry"`
	Discovery discover.Configuration         `mapstructure:"discovery"`
	Fetch     fetch.Configuration            `mapstructure:"fetch"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// VersionResolver reports the version printed by --version.
type VersionResolver func(context.Context) string

// WorkingDirectoryResolver reports the directory that scopes the registry.
type WorkingDirectoryResolver func() (string, error)

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand              *cobra.Command
	configurationLoader      *utils.ConfigurationLoader
	loggerFactory            *utils.LoggerFactory
	logger                   *zap.Logger
	configuration            ApplicationConfiguration
	configurationMetadata    utils.LoadedConfiguration
	configurationFilePath    string
	logLevelFlagValue        string
	logFormatFlagValue       string
	verboseFlagValue         bool
	versionFlagValue         bool
	commandContextAccessor   utils.CommandContextAccessor
	versionResolver          VersionResolver
	workingDirectoryResolver WorkingDirectoryResolver
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		configurationSearchPaths(pathutils.NewHomeExpander()),
	)
	embeddedConfiguration, embeddedConfigurationType := EmbeddedDefaultConfiguration()
	configurationLoader.SetEmbeddedConfiguration(embeddedConfiguration, embeddedConfigurationType)

	application := &Application{
		configurationLoader:      configurationLoader,
		loggerFactory:            utils.NewLoggerFactory(),
		logger:                   zap.NewNop(),
		commandContextAccessor:   utils.NewCommandContextAccessor(),
		versionResolver:          resolveBuildVersion,
		workingDirectoryResolver: os.Getwd,
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	cobraCommand.PersistentFlags().BoolVarP(&application.verboseFlagValue, verboseFlagNameConstant, verboseFlagShorthandConstant, false, verboseFlagUsageConstant)
	cobraCommand.Flags().BoolVar(&application.versionFlagValue, versionFlagNameConstant, false, versionFlagUsageConstant)

	for _, subcommand := range application.buildSubcommands() {
		cobraCommand.AddCommand(subcommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := utils.SyncLogger(application.logger); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) buildSubcommands() []*cobra.Command {
	loggerProvider := func() *zap.Logger {
		return application.logger
	}
	registryConfigurationProvider := func() registry.Configuration {
		return application.configuration.Registry
	}

	discoverBuilder := discover.CommandBuilder{
		LoggerProvider: loggerProvider,
		ConfigurationProvider: func() discover.Configuration {
			return application.configuration.Discovery
		},
		RegistryConfigurationProvider: registryConfigurationProvider,
	}
	statusBuilder := status.CommandBuilder{
		LoggerProvider:                loggerProvider,
		RegistryConfigurationProvider: registryConfigurationProvider,
	}
	fetchBuilder := fetch.CommandBuilder{
		LoggerProvider:               loggerProvider,
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider: func() fetch.Configuration {
			return application.configuration.Fetch
		},
		RegistryConfigurationProvider: registryConfigurationProvider,
	}
	listBuilder := list.CommandBuilder{
		LoggerProvider:                loggerProvider,
		RegistryConfigurationProvider: registryConfigurationProvider,
	}

	builders := []interface {
		Build() (*cobra.Command, error)
	}{&discoverBuilder, &statusBuilder, &fetchBuilder, &listBuilder}

	subcommands := make([]*cobra.Command, 0, len(builders))
	for _, builder := range builders {
		subcommand, buildError := builder.Build()
		if buildError != nil {
			continue
		}
		subcommands = append(subcommands, subcommand)
	}
	return subcommands
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelWarn),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatStructured),
	}
	for _, sectionDefaults := range []map[string]any{
		registry.DefaultConfigurationValues(registryConfigurationKeyConstant),
		discover.DefaultConfigurationValues(discoveryConfigurationKeyConstant),
		fetch.DefaultConfigurationValues(fetchConfigurationKeyConstant),
	} {
		for configurationKey, configurationValue := range sectionDefaults {
			defaultValues[configurationKey] = configurationValue
		}
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	workingDirectory, workingDirectoryError := application.resolveWorkingDirectory()

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
		zap.String(workingDirectoryFieldConstant, workingDirectory),
	)
	if workingDirectoryError != nil {
		application.logger.Debug(workingDirectoryUnavailableMessageConstant, zap.Error(workingDirectoryError))
	}

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		updatedContext = application.commandContextAccessor.WithVerboseOutput(updatedContext, application.verboseFlagValue)
		if workingDirectoryError == nil {
			updatedContext = application.commandContextAccessor.WithWorkingDirectory(updatedContext, workingDirectory)
		}
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

// resolveWorkingDirectory defers failures to the subcommands, which report them when they need a scope.
func (application *Application) resolveWorkingDirectory() (string, error) {
	if application.workingDirectoryResolver == nil {
		return "", errors.New(workingDirectoryUnavailableMessageConstant)
	}
	return application.workingDirectoryResolver()
}

func (application *Application) humanReadableLoggingEnabled() bool {
	return utils.LogFormat(application.configuration.Common.LogFormat).IsHumanReadable()
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Strings(logFieldArgumentsConstant, arguments),
	)

	if application.versionFlagValue {
		version := unknownVersionConstant
		if application.versionResolver != nil {
			version = application.versionResolver(command.Context())
		}
		fmt.Fprintf(command.OutOrStdout(), versionOutputTemplateConstant, applicationNameConstant, version)
		return nil
	}

	return command.Help()
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}

func configurationSearchPaths(homeExpander *pathutils.HomeExpander) []string {
	searchPaths := []string{defaultConfigurationSearchPathConstant}
	userConfigurationDirectory, expansionError := homeExpander.Resolve(userConfigurationDirectoryPathConstant)
	if expansionError == nil {
		searchPaths = append(searchPaths, filepath.Clean(userConfigurationDirectory))
	}
	return searchPaths
}

func resolveBuildVersion(context.Context) string {
	buildInformation, available := debug.ReadBuildInfo()
	if !available {
		return unknownVersionConstant
	}
	version := strings.TrimSpace(buildInformation.Main.Version)
	if len(version) == 0 {
		return unknownVersionConstant
	}
	return version
}

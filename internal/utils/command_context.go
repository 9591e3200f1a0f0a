package utils

import (
	"context"
	"strings"
)

const (
	configurationFilePathContextKeyConstant = commandContextKey("configurationFilePath")
	workingDirectoryContextKeyConstant      = commandContextKey("workingDirectory")
	verboseOutputContextKeyConstant         = commandContextKey("verboseOutput")
)

type commandContextKey string

// CommandContextAccessor manages values the root command shares with its subcommands.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath attaches the configuration file path to the provided context.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	return context.WithValue(ensureContext(parentContext), configurationFilePathContextKeyConstant, configurationFilePath)
}

// ConfigurationFilePath extracts the configuration file path from the provided context.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	return accessor.stringValue(executionContext, configurationFilePathContextKeyConstant)
}

// WithWorkingDirectory attaches the resolved working directory that scopes the registry.
func (accessor CommandContextAccessor) WithWorkingDirectory(parentContext context.Context, workingDirectory string) context.Context {
	return context.WithValue(ensureContext(parentContext), workingDirectoryContextKeyConstant, workingDirectory)
}

// WorkingDirectory extracts the working directory; empty values are reported as missing.
func (accessor CommandContextAccessor) WorkingDirectory(executionContext context.Context) (string, bool) {
	workingDirectory, available := accessor.stringValue(executionContext, workingDirectoryContextKeyConstant)
	if !available || len(strings.TrimSpace(workingDirectory)) == 0 {
		return "", false
	}
	return workingDirectory, true
}

// WithVerboseOutput records whether progress tracing was requested.
func (accessor CommandContextAccessor) WithVerboseOutput(parentContext context.Context, verbose bool) context.Context {
	return context.WithValue(ensureContext(parentContext), verboseOutputContextKeyConstant, verbose)
}

// VerboseOutput reports whether progress tracing was requested.
func (accessor CommandContextAccessor) VerboseOutput(executionContext context.Context) bool {
	if executionContext == nil {
		return false
	}
	verbose, available := executionContext.Value(verboseOutputContextKeyConstant).(bool)
	return available && verbose
}

func (accessor CommandContextAccessor) stringValue(executionContext context.Context, key commandContextKey) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	value, available := executionContext.Value(key).(string)
	if !available {
		return "", false
	}
	return value, true
}

func ensureContext(parentContext context.Context) context.Context {
	if parentContext == nil {
		return context.Background()
	}
	return parentContext
}

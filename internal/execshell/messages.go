package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	gitFetchSubcommandNameConstant       = "fetch"
	flagPrefixConstant                   = "-"
	argumentSeparatorConstant            = " "
	emptyStringConstant                  = ""
	everyRemoteLabelConstant             = "every remote"
	defaultWorkingDirectoryLabelConstant = "current directory"
	unknownFailureMessageConstant        = "unknown error"

	genericSubjectTemplateConstant        = "%s (in %s)"
	fetchSubjectTemplateConstant          = "remote %s in %s"
	standardErrorSuffixTemplateConstant   = ": %s"
	startTemplateConstant                 = "Running %s"
	successTemplateConstant               = "Completed %s"
	failureTemplateConstant               = "%s exited with code %d%s"
	executionFailureTemplateConstant      = "%s could not start: %s"
	fetchStartTemplateConstant            = "Fetching %s"
	fetchSuccessTemplateConstant          = "Fetched %s"
	fetchFailureTemplateConstant          = "Fetch of %s exited with code %d%s"
	fetchExecutionFailureTemplateConstant = "Fetch of %s could not start: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
// `git fetch <remote>` fallback invocations are described by remote; everything else by its command line.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing a command that could not be started.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

type messageTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
}

var genericMessageTemplates = messageTemplates{
	start:            startTemplateConstant,
	success:          successTemplateConstant,
	failure:          failureTemplateConstant,
	executionFailure: executionFailureTemplateConstant,
}

var fetchMessageTemplates = messageTemplates{
	start:            fetchStartTemplateConstant,
	success:          fetchSuccessTemplateConstant,
	failure:          fetchFailureTemplateConstant,
	executionFailure: fetchExecutionFailureTemplateConstant,
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	subject, templates := formatter.describeSubject(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, subject)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, subject)
	case messageStageFailure:
		return fmt.Sprintf(templates.failure, subject, result.ExitCode, standardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(templates.executionFailure, subject, describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) describeSubject(command ShellCommand) (string, messageTemplates) {
	workingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	arguments := command.Details.Arguments

	if command.Name == CommandGit && len(arguments) > 0 && strings.TrimSpace(arguments[0]) == gitFetchSubcommandNameConstant {
		if len(workingDirectory) == 0 {
			workingDirectory = defaultWorkingDirectoryLabelConstant
		}
		return fmt.Sprintf(fetchSubjectTemplateConstant, fetchedRemoteName(arguments[1:]), workingDirectory), fetchMessageTemplates
	}

	commandLine := strings.Join(append([]string{string(command.Name)}, arguments...), argumentSeparatorConstant)
	if len(workingDirectory) == 0 {
		return commandLine, genericMessageTemplates
	}
	return fmt.Sprintf(genericSubjectTemplateConstant, commandLine, workingDirectory), genericMessageTemplates
}

// fetchedRemoteName returns the first positional fetch argument.
func fetchedRemoteName(arguments []string) string {
	for _, argument := range arguments {
		trimmedArgument := strings.TrimSpace(argument)
		if len(trimmedArgument) == 0 || strings.HasPrefix(trimmedArgument, flagPrefixConstant) {
			continue
		}
		return trimmedArgument
	}
	return everyRemoteLabelConstant
}

func standardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

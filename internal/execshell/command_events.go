package execshell

// CommandEventObserver receives lifecycle notifications for commands run by ShellExecutor.
type CommandEventObserver interface {
	CommandStarted(command ShellCommand)
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed reports failures that prevented an execution result, such as a missing executable.
	CommandExecutionFailed(command ShellCommand, failure error)
}

type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}

type commandEventFanout []CommandEventObserver

func newCommandEventFanout(observers []CommandEventObserver) CommandEventObserver {
	fanout := make(commandEventFanout, 0, len(observers))
	for _, observer := range observers {
		if observer != nil {
			fanout = append(fanout, observer)
		}
	}
	if len(fanout) == 0 {
		return noopCommandEventObserver{}
	}
	return fanout
}

func (fanout commandEventFanout) CommandStarted(command ShellCommand) {
	for _, observer := range fanout {
		observer.CommandStarted(command)
	}
}

func (fanout commandEventFanout) CommandCompleted(command ShellCommand, result ExecutionResult) {
	for _, observer := range fanout {
		observer.CommandCompleted(command, result)
	}
}

func (fanout commandEventFanout) CommandExecutionFailed(command ShellCommand, failure error) {
	for _, observer := range fanout {
		observer.CommandExecutionFailed(command, failure)
	}
}

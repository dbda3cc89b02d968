package execute

// CommandEvent identifies one execution for lifecycle observers.
type CommandEvent struct {
	CommandLine      string
	WorkingDirectory string
}

// CommandEventObserver receives lifecycle notifications for command execution.
type CommandEventObserver interface {
	// CommandStarted notifies observers that an execution is beginning.
	CommandStarted(event CommandEvent)
	// CommandCompleted notifies observers that an execution finished within its exit policy.
	CommandCompleted(event CommandEvent, result ExecutionResult)
	// CommandFailed reports launch failures, execution failures, and rejected exit values.
	CommandFailed(event CommandEvent, failure error)
}

// noopCommandEventObserver discards all command events.
type noopCommandEventObserver struct{}

// CommandStarted implements CommandEventObserver for the no-op observer.
func (noopCommandEventObserver) CommandStarted(CommandEvent) {}

// CommandCompleted implements CommandEventObserver for the no-op observer.
func (noopCommandEventObserver) CommandCompleted(CommandEvent, ExecutionResult) {}

// CommandFailed implements CommandEventObserver for the no-op observer.
func (noopCommandEventObserver) CommandFailed(CommandEvent, error) {}

package execute

import (
	"errors"
	"fmt"
	"time"
)

const (
	launchErrorTemplateConstant             = "unable to launch %s: %v"
	executionErrorTemplateConstant          = "execution of %s failed: %v"
	exitValueErrorTemplateConstant          = "unexpected process exit value %d"
	exitValueKilledErrorTemplateConstant    = "process timed out and was killed (exit value %d)"
	waitTimeoutErrorTemplateConstant        = "result not available within %s"
	loggerNotConfiguredMessageConstant      = "logger not configured"
	launcherNotConfiguredMessageConstant    = "process launcher not configured"
	handlerNotConfiguredMessageConstant     = "result handler not configured"
	commandLineNotConfiguredMessageConstant = "command line not configured"
)

// Configuration sentinels reported by constructor and entry-point validation.
var (
	ErrLoggerNotConfigured        = errors.New(loggerNotConfiguredMessageConstant)
	ErrLauncherNotConfigured      = errors.New(launcherNotConfiguredMessageConstant)
	ErrResultHandlerNotConfigured = errors.New(handlerNotConfiguredMessageConstant)
	ErrCommandLineNotConfigured   = errors.New(commandLineNotConfiguredMessageConstant)
)

// LaunchError reports that the operating system refused or failed to start the
// process. Launch failures are never retried automatically.
type LaunchError struct {
	CommandLine string
	Cause       error
}

// Error describes the failed launch.
func (launchFailure LaunchError) Error() string {
	return fmt.Sprintf(launchErrorTemplateConstant, launchFailure.CommandLine, launchFailure.Cause)
}

// Unwrap exposes the underlying operating system error.
func (launchFailure LaunchError) Unwrap() error {
	return launchFailure.Cause
}

// ExecutionError reports a post-launch failure unrelated to the exit value,
// such as an interrupted wait on the process handle.
type ExecutionError struct {
	CommandLine string
	Cause       error
}

// Error describes the execution failure.
func (executionFailure ExecutionError) Error() string {
	return fmt.Sprintf(executionErrorTemplateConstant, executionFailure.CommandLine, executionFailure.Cause)
}

// Unwrap exposes the underlying failure.
func (executionFailure ExecutionError) Unwrap() error {
	return executionFailure.Cause
}

// ExitValueError reports a process that ran to completion with an exit value
// outside the configured policy. WatchdogKilled distinguishes a process that
// misbehaved from one that was terminated on timeout.
type ExitValueError struct {
	ExitValue      int
	WatchdogKilled bool
	StandardError  string
}

// Error describes the rejected exit value.
func (exitFailure ExitValueError) Error() string {
	if exitFailure.WatchdogKilled {
		return fmt.Sprintf(exitValueKilledErrorTemplateConstant, exitFailure.ExitValue)
	}
	return fmt.Sprintf(exitValueErrorTemplateConstant, exitFailure.ExitValue)
}

// WaitTimeoutError reports that a bounded wait on a result handler expired
// before the execution completed. The underlying execution keeps running.
type WaitTimeoutError struct {
	Timeout time.Duration
}

// Error describes the expired wait.
func (waitTimeout WaitTimeoutError) Error() string {
	return fmt.Sprintf(waitTimeoutErrorTemplateConstant, waitTimeout.Timeout)
}

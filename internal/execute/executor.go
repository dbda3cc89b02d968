package execute

import (
	"bytes"
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/runcmd/internal/cmdline"
	"github.com/temirov/runcmd/internal/recovery"
)

const (
	commandStartedMessageConstant    = "command started"
	commandCompletedMessageConstant  = "command completed"
	commandFailedMessageConstant     = "command failed"
	commandLogFieldConstant          = "command"
	workingDirectoryLogFieldConstant = "working_directory"
	exitValueLogFieldConstant        = "exit_value"
	durationLogFieldConstant         = "duration"
	watchdogKilledLogFieldConstant   = "watchdog_killed"
	pumpOperationLabelConstant       = "drain process output stream"
	killOperationLabelConstant       = "terminate monitored process"
)

// ExecutionResult captures the observable outputs of a completed execution.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitValue      int
	WatchdogKilled bool
	Duration       time.Duration
}

// ExecutorOption customizes a single Executor instance.
type ExecutorOption func(*Executor)

// WithWorkingDirectory sets the working directory of launched processes.
func WithWorkingDirectory(workingDirectory string) ExecutorOption {
	return func(executor *Executor) { executor.workingDirectory = workingDirectory }
}

// WithEnvironment sets additional environment variables merged over the parent environment.
func WithEnvironment(environmentVariables map[string]string) ExecutorOption {
	return func(executor *Executor) { executor.environmentVariables = environmentVariables }
}

// WithStandardOutput streams process output to the provided writer in addition to capturing it.
func WithStandardOutput(destination io.Writer) ExecutorOption {
	return func(executor *Executor) { executor.standardOutput = destination }
}

// WithStandardError streams process error output to the provided writer in addition to capturing it.
func WithStandardError(destination io.Writer) ExecutorOption {
	return func(executor *Executor) { executor.standardError = destination }
}

// WithStandardInput feeds the provided reader to the process standard input.
func WithStandardInput(source io.Reader) ExecutorOption {
	return func(executor *Executor) { executor.standardInput = source }
}

// WithWatchdogTimeout arms a per-execution watchdog that kills the process
// after the provided duration. A zero duration disables the watchdog.
func WithWatchdogTimeout(timeout time.Duration) ExecutorOption {
	return func(executor *Executor) { executor.watchdogTimeout = timeout }
}

// WithExitPolicy installs the exit-value acceptance policy.
func WithExitPolicy(exitPolicy ExitPolicy) ExecutorOption {
	return func(executor *Executor) {
		if exitPolicy != nil {
			executor.exitPolicy = exitPolicy
		}
	}
}

// WithRecoveryPolicy installs the leniency policy applied to best-effort operations.
func WithRecoveryPolicy(recoveryPolicy recovery.Policy) ExecutorOption {
	return func(executor *Executor) { executor.recoveryPolicy = recoveryPolicy }
}

// WithEventObserver installs a lifecycle observer for command events.
func WithEventObserver(eventObserver CommandEventObserver) ExecutorOption {
	return func(executor *Executor) {
		if eventObserver != nil {
			executor.eventObserver = eventObserver
		}
	}
}

// Executor orchestrates command resolution, process launch, watchdog
// supervision, and exit-value validation for one execution configuration.
type Executor struct {
	logger               *zap.Logger
	launcher             ProcessLauncher
	workingDirectory     string
	environmentVariables map[string]string
	standardOutput       io.Writer
	standardError        io.Writer
	standardInput        io.Reader
	watchdogTimeout      time.Duration
	exitPolicy           ExitPolicy
	recoveryPolicy       recovery.Policy
	eventObserver        CommandEventObserver
}

// NewExecutor assembles an Executor around the provided logger and launcher.
func NewExecutor(logger *zap.Logger, launcher ProcessLauncher, options ...ExecutorOption) (*Executor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if launcher == nil {
		return nil, ErrLauncherNotConfigured
	}

	executor := &Executor{
		logger:         logger,
		launcher:       launcher,
		exitPolicy:     DefaultExitPolicy(),
		recoveryPolicy: recovery.LenientPolicy(),
		eventObserver:  noopCommandEventObserver{},
	}

	for _, option := range options {
		option(executor)
	}

	return executor, nil
}

// Execute runs the command line to completion and returns its result. A launch
// refusal, a post-launch failure, or an exit value outside the configured
// policy is returned as an error alongside whatever result was observed.
func (executor *Executor) Execute(executionContext context.Context, commandLine *cmdline.CommandLine) (ExecutionResult, error) {
	launchedExecution, launchError := executor.launch(executionContext, commandLine)
	if launchError != nil {
		return ExecutionResult{}, launchError
	}

	return executor.settle(launchedExecution)
}

// ExecuteAsync confirms the spawn synchronously and settles the execution on a
// background goroutine. Every launch failure, execution failure, timeout, and
// rejected exit value is funneled into the result handler exactly once; the
// returned error reports only caller mistakes such as a missing handler.
func (executor *Executor) ExecuteAsync(executionContext context.Context, commandLine *cmdline.CommandLine, resultHandler ResultHandler) error {
	if resultHandler == nil {
		return ErrResultHandlerNotConfigured
	}

	launchedExecution, launchError := executor.launch(executionContext, commandLine)
	if launchError != nil {
		resultHandler.OnProcessFailed(launchError)
		return nil
	}

	go func() {
		executionResult, settleError := executor.settle(launchedExecution)
		if settleError != nil {
			resultHandler.OnProcessFailed(settleError)
			return
		}
		resultHandler.OnProcessComplete(executionResult.ExitValue)
	}()

	return nil
}

type launchedCommand struct {
	commandDisplay       string
	event                CommandEvent
	processHandle        ProcessHandle
	watchdog             *Watchdog
	standardOutputBuffer *bytes.Buffer
	standardErrorBuffer  *bytes.Buffer
	startTime            time.Time
}

func (executor *Executor) launch(executionContext context.Context, commandLine *cmdline.CommandLine) (*launchedCommand, error) {
	if commandLine == nil {
		return nil, ErrCommandLineNotConfigured
	}

	commandDisplay := commandLine.String()
	commandEvent := CommandEvent{CommandLine: commandDisplay, WorkingDirectory: executor.workingDirectory}

	executor.logger.Info(
		commandStartedMessageConstant,
		zap.String(commandLogFieldConstant, commandDisplay),
		zap.String(workingDirectoryLogFieldConstant, executor.workingDirectory),
	)
	executor.eventObserver.CommandStarted(commandEvent)

	standardOutputBuffer := &bytes.Buffer{}
	standardErrorBuffer := &bytes.Buffer{}

	launchSpecification := LaunchSpec{
		ArgumentVector:       commandLine.Resolve(),
		WorkingDirectory:     executor.workingDirectory,
		EnvironmentVariables: executor.environmentVariables,
		StandardOutput:       combineStreamWriters(standardOutputBuffer, executor.standardOutput),
		StandardError:        combineStreamWriters(standardErrorBuffer, executor.standardError),
		StandardInput:        executor.standardInput,
	}

	startTime := time.Now()
	processHandle, launchError := executor.launcher.Launch(executionContext, launchSpecification)
	if launchError != nil {
		executor.logger.Error(
			commandFailedMessageConstant,
			zap.String(commandLogFieldConstant, commandDisplay),
			zap.Error(launchError),
		)
		executor.eventObserver.CommandFailed(commandEvent, launchError)
		return nil, launchError
	}

	var watchdog *Watchdog
	if executor.watchdogTimeout > 0 {
		watchdog = NewWatchdog(executor.watchdogTimeout)
		if armError := watchdog.Arm(processHandle); armError != nil {
			executor.eventObserver.CommandFailed(commandEvent, armError)
			return nil, armError
		}
	}

	return &launchedCommand{
		commandDisplay:       commandDisplay,
		event:                commandEvent,
		processHandle:        processHandle,
		watchdog:             watchdog,
		standardOutputBuffer: standardOutputBuffer,
		standardErrorBuffer:  standardErrorBuffer,
		startTime:            startTime,
	}, nil
}

func (executor *Executor) settle(launched *launchedCommand) (ExecutionResult, error) {
	exitValue, waitError := launched.processHandle.Wait()
	if launched.watchdog != nil {
		launched.watchdog.Stop()
	}

	executionResult := ExecutionResult{
		StandardOutput: launched.standardOutputBuffer.String(),
		StandardError:  launched.standardErrorBuffer.String(),
		ExitValue:      exitValue,
		WatchdogKilled: launched.watchdog != nil && launched.watchdog.KilledProcess(),
		Duration:       time.Since(launched.startTime),
	}

	if waitError != nil {
		executionFailure := ExecutionError{CommandLine: launched.commandDisplay, Cause: waitError}
		executor.logger.Error(
			commandFailedMessageConstant,
			zap.String(commandLogFieldConstant, launched.commandDisplay),
			zap.Error(executionFailure),
		)
		executor.eventObserver.CommandFailed(launched.event, executionFailure)
		return executionResult, executionFailure
	}

	if !executor.exitPolicy.Accepts(exitValue) {
		exitFailure := ExitValueError{
			ExitValue:      exitValue,
			WatchdogKilled: executionResult.WatchdogKilled,
			StandardError:  executionResult.StandardError,
		}
		executor.logger.Error(
			commandFailedMessageConstant,
			zap.String(commandLogFieldConstant, launched.commandDisplay),
			zap.Int(exitValueLogFieldConstant, exitValue),
			zap.Bool(watchdogKilledLogFieldConstant, executionResult.WatchdogKilled),
		)
		executor.eventObserver.CommandFailed(launched.event, exitFailure)
		return executionResult, exitFailure
	}

	if cleanupFailure := executor.handleBestEffortFailures(launched); cleanupFailure != nil {
		executionFailure := ExecutionError{CommandLine: launched.commandDisplay, Cause: cleanupFailure}
		executor.eventObserver.CommandFailed(launched.event, executionFailure)
		return executionResult, executionFailure
	}

	executor.logger.Info(
		commandCompletedMessageConstant,
		zap.String(commandLogFieldConstant, launched.commandDisplay),
		zap.Int(exitValueLogFieldConstant, exitValue),
		zap.Duration(durationLogFieldConstant, executionResult.Duration),
	)
	executor.eventObserver.CommandCompleted(launched.event, executionResult)

	return executionResult, nil
}

// handleBestEffortFailures applies the recovery policy to auxiliary failures
// after the primary result is known to be acceptable, so a strict policy can
// never mask a launch or exit-value failure.
func (executor *Executor) handleBestEffortFailures(launched *launchedCommand) error {
	for _, pumpFailure := range launched.processHandle.PumpFailures() {
		if handledFailure := executor.recoveryPolicy.Handle(executor.logger, pumpOperationLabelConstant, pumpFailure); handledFailure != nil {
			return handledFailure
		}
	}

	if launched.watchdog != nil {
		if handledFailure := executor.recoveryPolicy.Handle(executor.logger, killOperationLabelConstant, launched.watchdog.TerminationFailure()); handledFailure != nil {
			return handledFailure
		}
	}

	return nil
}

func combineStreamWriters(captureBuffer *bytes.Buffer, additionalDestination io.Writer) io.Writer {
	if additionalDestination == nil {
		return captureBuffer
	}
	return io.MultiWriter(captureBuffer, additionalDestination)
}

package execute_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/runcmd/internal/cmdline"
	"github.com/temirov/runcmd/internal/execute"
)

const (
	testExecutableConstant            = "test"
	testArgumentConstant              = "--version"
	testWorkingDirectoryConstant      = "."
	testStandardOutputContentConstant = "ok"
	testStandardErrorContentConstant  = "failure"
	testWatchdogTimeoutConstant       = 25 * time.Millisecond
	testAsyncWaitTimeoutConstant      = 2 * time.Second
)

type fakeProcessHandle struct {
	exitValue      int
	waitDelay      time.Duration
	standardOutput string
	standardError  string
	pumpFailures   []error

	killSignal sync.Once
	killed     chan struct{}
}

func newFakeProcessHandle(exitValue int) *fakeProcessHandle {
	return &fakeProcessHandle{exitValue: exitValue, killed: make(chan struct{})}
}

func (handle *fakeProcessHandle) Wait() (int, error) {
	if handle.waitDelay == 0 {
		return handle.exitValue, nil
	}

	waitTimer := time.NewTimer(handle.waitDelay)
	defer waitTimer.Stop()

	select {
	case <-waitTimer.C:
		return handle.exitValue, nil
	case <-handle.killed:
		return -1, nil
	}
}

func (handle *fakeProcessHandle) Kill() error {
	handle.killSignal.Do(func() { close(handle.killed) })
	return nil
}

func (handle *fakeProcessHandle) ProcessIdentifier() int {
	return 12345
}

func (handle *fakeProcessHandle) PumpFailures() []error {
	return handle.pumpFailures
}

type recordingProcessLauncher struct {
	processHandle          execute.ProcessHandle
	launchError            error
	recordedSpecifications []execute.LaunchSpec
}

func (launcher *recordingProcessLauncher) Launch(executionContext context.Context, specification execute.LaunchSpec) (execute.ProcessHandle, error) {
	launcher.recordedSpecifications = append(launcher.recordedSpecifications, specification)
	if launcher.launchError != nil {
		return nil, launcher.launchError
	}

	if specification.StandardOutput != nil {
		fakeHandle, isFakeHandle := launcher.processHandle.(*fakeProcessHandle)
		if isFakeHandle {
			_, _ = specification.StandardOutput.Write([]byte(fakeHandle.standardOutput))
			_, _ = specification.StandardError.Write([]byte(fakeHandle.standardError))
		}
	}

	return launcher.processHandle, nil
}

func buildTestCommandLine(testInstance *testing.T) *cmdline.CommandLine {
	commandLine, constructionError := cmdline.NewCommandLine(testExecutableConstant)
	require.NoError(testInstance, constructionError)
	require.NoError(testInstance, commandLine.AddArgument(testArgumentConstant))
	return commandLine
}

func TestNewExecutorValidation(testInstance *testing.T) {
	testCases := []struct {
		name        string
		logger      *zap.Logger
		launcher    execute.ProcessLauncher
		expectError error
	}{
		{
			name:        "logger_validation",
			logger:      nil,
			launcher:    &recordingProcessLauncher{},
			expectError: execute.ErrLoggerNotConfigured,
		},
		{
			name:        "launcher_validation",
			logger:      zap.NewNop(),
			launcher:    nil,
			expectError: execute.ErrLauncherNotConfigured,
		},
		{
			name:     "successful_initialization",
			logger:   zap.NewNop(),
			launcher: &recordingProcessLauncher{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor, creationError := execute.NewExecutor(testCase.logger, testCase.launcher)
			if testCase.expectError != nil {
				require.ErrorIs(testInstance, creationError, testCase.expectError)
				require.Nil(testInstance, executor)
			} else {
				require.NoError(testInstance, creationError)
				require.NotNil(testInstance, executor)
			}
		})
	}
}

func TestExecutorExecuteBehavior(testInstance *testing.T) {
	launchRefusal := errors.New("executable file not found")

	testCases := []struct {
		name             string
		processHandle    *fakeProcessHandle
		launchError      error
		options          []execute.ExecutorOption
		expectedError    any
		expectedExitCode int
		expectedLogCount int
	}{
		{
			name:             "success_zero_exit",
			processHandle:    newFakeProcessHandle(0),
			expectedExitCode: 0,
			expectedLogCount: 2,
		},
		{
			name:             "rejected_exit_value",
			processHandle:    newFakeProcessHandle(1),
			expectedError:    execute.ExitValueError{},
			expectedExitCode: 1,
			expectedLogCount: 2,
		},
		{
			name:             "accepted_nonzero_exit_value",
			processHandle:    newFakeProcessHandle(1),
			options:          []execute.ExecutorOption{execute.WithExitPolicy(execute.ExitValues(1))},
			expectedExitCode: 1,
			expectedLogCount: 2,
		},
		{
			name:             "wildcard_exit_policy",
			processHandle:    newFakeProcessHandle(42),
			options:          []execute.ExecutorOption{execute.WithExitPolicy(execute.AnyExitValue())},
			expectedExitCode: 42,
			expectedLogCount: 2,
		},
		{
			name:             "launch_failure",
			launchError:      execute.LaunchError{CommandLine: testExecutableConstant, Cause: launchRefusal},
			expectedError:    execute.LaunchError{},
			expectedLogCount: 2,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observedLogs := observer.New(zap.DebugLevel)
			logger := zap.New(observerCore)

			launcher := &recordingProcessLauncher{processHandle: testCase.processHandle, launchError: testCase.launchError}
			if testCase.processHandle != nil {
				testCase.processHandle.standardOutput = testStandardOutputContentConstant
				testCase.processHandle.standardError = testStandardErrorContentConstant
			}

			executorOptions := append([]execute.ExecutorOption{execute.WithWorkingDirectory(testWorkingDirectoryConstant)}, testCase.options...)
			executor, creationError := execute.NewExecutor(logger, launcher, executorOptions...)
			require.NoError(testInstance, creationError)

			executionResult, executionError := executor.Execute(context.Background(), buildTestCommandLine(testInstance))

			if testCase.expectedError != nil {
				require.Error(testInstance, executionError)
				require.IsType(testInstance, testCase.expectedError, executionError)
			} else {
				require.NoError(testInstance, executionError)
				require.Equal(testInstance, testCase.expectedExitCode, executionResult.ExitValue)
				require.Equal(testInstance, testStandardOutputContentConstant, executionResult.StandardOutput)
				require.Equal(testInstance, testStandardErrorContentConstant, executionResult.StandardError)
			}

			require.Len(testInstance, observedLogs.All(), testCase.expectedLogCount)
			require.Len(testInstance, launcher.recordedSpecifications, 1)
			require.Equal(testInstance, testWorkingDirectoryConstant, launcher.recordedSpecifications[0].WorkingDirectory)
		})
	}
}

func TestExecutorResolvesSubstitutionsBeforeLaunch(testInstance *testing.T) {
	processHandle := newFakeProcessHandle(0)
	launcher := &recordingProcessLauncher{processHandle: processHandle}

	executor, creationError := execute.NewExecutor(zap.NewNop(), launcher)
	require.NoError(testInstance, creationError)

	commandLine, constructionError := cmdline.NewCommandLine(testExecutableConstant)
	require.NoError(testInstance, constructionError)
	require.NoError(testInstance, commandLine.AddArgument("${file}"))
	commandLine.SetSubstitutionMap(map[string]any{"file": "/tmp/report.pdf"})

	_, executionError := executor.Execute(context.Background(), commandLine)
	require.NoError(testInstance, executionError)

	require.Len(testInstance, launcher.recordedSpecifications, 1)
	require.Equal(testInstance, []string{testExecutableConstant, "/tmp/report.pdf"}, launcher.recordedSpecifications[0].ArgumentVector)
}

func TestExecutorWatchdogRace(testInstance *testing.T) {
	testCases := []struct {
		name                 string
		waitDelay            time.Duration
		expectWatchdogKilled bool
	}{
		{
			name:                 "long_process_killed",
			waitDelay:            time.Second,
			expectWatchdogKilled: true,
		},
		{
			name:      "short_process_survives",
			waitDelay: time.Millisecond,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			processHandle := newFakeProcessHandle(0)
			processHandle.waitDelay = testCase.waitDelay
			launcher := &recordingProcessLauncher{processHandle: processHandle}

			executor, creationError := execute.NewExecutor(
				zap.NewNop(),
				launcher,
				execute.WithWatchdogTimeout(testWatchdogTimeoutConstant),
			)
			require.NoError(testInstance, creationError)

			executionResult, executionError := executor.Execute(context.Background(), buildTestCommandLine(testInstance))

			if testCase.expectWatchdogKilled {
				require.Error(testInstance, executionError)
				exitFailure := execute.ExitValueError{}
				require.ErrorAs(testInstance, executionError, &exitFailure)
				require.True(testInstance, exitFailure.WatchdogKilled)
				require.True(testInstance, executionResult.WatchdogKilled)
			} else {
				require.NoError(testInstance, executionError)
				require.False(testInstance, executionResult.WatchdogKilled)
			}
		})
	}
}

func TestExecuteAsyncReportsThroughHandler(testInstance *testing.T) {
	testCases := []struct {
		name              string
		processHandle     *fakeProcessHandle
		launchError       error
		expectedExitValue int
		expectFailure     bool
	}{
		{
			name:              "async_success",
			processHandle:     newFakeProcessHandle(0),
			expectedExitValue: 0,
		},
		{
			name:          "async_rejected_exit_value",
			processHandle: newFakeProcessHandle(7),
			expectFailure: true,
		},
		{
			name:          "async_launch_failure",
			launchError:   execute.LaunchError{CommandLine: testExecutableConstant, Cause: errors.New("permission denied")},
			expectFailure: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			launcher := &recordingProcessLauncher{processHandle: testCase.processHandle, launchError: testCase.launchError}
			executor, creationError := execute.NewExecutor(zap.NewNop(), launcher)
			require.NoError(testInstance, creationError)

			resultHandler := execute.NewDefaultResultHandler()
			asyncError := executor.ExecuteAsync(context.Background(), buildTestCommandLine(testInstance), resultHandler)
			require.NoError(testInstance, asyncError)

			require.NoError(testInstance, resultHandler.WaitFor(testAsyncWaitTimeoutConstant))
			require.True(testInstance, resultHandler.Completed())

			if testCase.expectFailure {
				require.Error(testInstance, resultHandler.Failure())
			} else {
				require.NoError(testInstance, resultHandler.Failure())
				require.Equal(testInstance, testCase.expectedExitValue, resultHandler.ExitValue())
			}
		})
	}
}

func TestExecuteAsyncRequiresResultHandler(testInstance *testing.T) {
	executor, creationError := execute.NewExecutor(zap.NewNop(), &recordingProcessLauncher{processHandle: newFakeProcessHandle(0)})
	require.NoError(testInstance, creationError)

	asyncError := executor.ExecuteAsync(context.Background(), buildTestCommandLine(testInstance), nil)
	require.ErrorIs(testInstance, asyncError, execute.ErrResultHandlerNotConfigured)
}

func TestExecuteRequiresCommandLine(testInstance *testing.T) {
	executor, creationError := execute.NewExecutor(zap.NewNop(), &recordingProcessLauncher{processHandle: newFakeProcessHandle(0)})
	require.NoError(testInstance, creationError)

	_, executionError := executor.Execute(context.Background(), nil)
	require.ErrorIs(testInstance, executionError, execute.ErrCommandLineNotConfigured)
}

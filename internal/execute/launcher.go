package execute

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"
)

const (
	environmentAssignmentSeparatorConstant = "="
	environmentAssignmentTemplateConstant  = "%s%s%s"
	argumentVectorSeparatorConstant        = " "
	emptyArgumentVectorMessageConstant     = "argument vector must not be empty"
	pipeReleaseDelayConstant               = 5 * time.Second
)

// LaunchSpec describes a single process spawn with a fully resolved argument vector.
type LaunchSpec struct {
	ArgumentVector       []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardOutput       io.Writer
	StandardError        io.Writer
	StandardInput        io.Reader
}

// ProcessHandle controls one spawned OS process for the duration of an execution.
type ProcessHandle interface {
	// Wait blocks until stream pumping finishes and the process exits, returning the exit value.
	Wait() (int, error)
	// Kill forcefully terminates the process. Killing an exited process is a safe no-op.
	Kill() error
	// ProcessIdentifier returns the OS process identifier.
	ProcessIdentifier() int
	// PumpFailures returns errors collected by the stream pump goroutines.
	PumpFailures() []error
}

// ProcessLauncher spawns OS processes from resolved argument vectors.
type ProcessLauncher interface {
	Launch(executionContext context.Context, specification LaunchSpec) (ProcessHandle, error)
}

// OSProcessLauncher executes processes using the operating system facilities.
type OSProcessLauncher struct{}

// NewOSProcessLauncher constructs a launcher backed by os/exec.
func NewOSProcessLauncher() *OSProcessLauncher {
	return &OSProcessLauncher{}
}

// Launch spawns the described process and starts one pump goroutine per output
// stream. Pumping runs concurrently with the wait for process exit because an
// undrained pipe can block a child writing to a full buffer.
//
// The child is placed in its own process group so that termination reaches any
// descendants it forked; a descendant holding the inherited pipe write ends
// would otherwise keep the pumps blocked past the child's own death.
func (launcher *OSProcessLauncher) Launch(executionContext context.Context, specification LaunchSpec) (ProcessHandle, error) {
	if len(specification.ArgumentVector) == 0 {
		return nil, LaunchError{Cause: errors.New(emptyArgumentVectorMessageConstant)}
	}

	commandDisplay := strings.Join(specification.ArgumentVector, argumentVectorSeparatorConstant)
	executableCommand := exec.CommandContext(executionContext, specification.ArgumentVector[0], specification.ArgumentVector[1:]...)

	if len(specification.WorkingDirectory) > 0 {
		executableCommand.Dir = specification.WorkingDirectory
	}

	if len(specification.EnvironmentVariables) > 0 {
		mergedEnvironment := append([]string{}, os.Environ()...)
		for environmentKey, environmentValue := range specification.EnvironmentVariables {
			mergedEnvironment = append(mergedEnvironment, fmt.Sprintf(environmentAssignmentTemplateConstant, environmentKey, environmentAssignmentSeparatorConstant, environmentValue))
		}
		executableCommand.Env = mergedEnvironment
	}

	if specification.StandardInput != nil {
		executableCommand.Stdin = specification.StandardInput
	}

	executableCommand.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	executableCommand.Cancel = func() error {
		return killProcessGroup(executableCommand.Process)
	}
	executableCommand.WaitDelay = pipeReleaseDelayConstant

	standardOutputPipe, standardOutputPipeError := executableCommand.StdoutPipe()
	if standardOutputPipeError != nil {
		return nil, LaunchError{CommandLine: commandDisplay, Cause: standardOutputPipeError}
	}

	standardErrorPipe, standardErrorPipeError := executableCommand.StderrPipe()
	if standardErrorPipeError != nil {
		return nil, LaunchError{CommandLine: commandDisplay, Cause: standardErrorPipeError}
	}

	if startError := executableCommand.Start(); startError != nil {
		return nil, LaunchError{CommandLine: commandDisplay, Cause: startError}
	}

	processHandle := &osProcessHandle{
		command:     executableCommand,
		pipeClosers: []io.Closer{standardOutputPipe, standardErrorPipe},
	}
	processHandle.pumpStream(specification.StandardOutput, standardOutputPipe)
	processHandle.pumpStream(specification.StandardError, standardErrorPipe)

	return processHandle, nil
}

// killProcessGroup delivers SIGKILL to the child's process group so forked
// descendants die with it. A group that already exited reports no error.
func killProcessGroup(process *os.Process) error {
	if process == nil {
		return nil
	}

	groupKillError := syscall.Kill(-process.Pid, syscall.SIGKILL)
	switch {
	case groupKillError == nil:
		return nil
	case errors.Is(groupKillError, syscall.ESRCH):
		return nil
	}

	directKillError := process.Kill()
	if directKillError != nil && !errors.Is(directKillError, os.ErrProcessDone) {
		return directKillError
	}
	return nil
}

type osProcessHandle struct {
	command        *exec.Cmd
	pipeClosers    []io.Closer
	pumpWaitGroup  sync.WaitGroup
	pumpErrorMutex sync.Mutex
	pumpErrors     []error
}

func (processHandle *osProcessHandle) pumpStream(destination io.Writer, source io.Reader) {
	if destination == nil {
		destination = io.Discard
	}

	processHandle.pumpWaitGroup.Add(1)
	go func() {
		defer processHandle.pumpWaitGroup.Done()
		_, copyError := io.Copy(destination, source)
		if copyError == nil {
			return
		}
		// Kill releases the pipes on purpose; a closed pipe is not a pump defect.
		if errors.Is(copyError, fs.ErrClosed) || errors.Is(copyError, io.ErrClosedPipe) {
			return
		}
		processHandle.recordPumpFailure(copyError)
	}()
}

func (processHandle *osProcessHandle) recordPumpFailure(pumpFailure error) {
	processHandle.pumpErrorMutex.Lock()
	defer processHandle.pumpErrorMutex.Unlock()
	processHandle.pumpErrors = append(processHandle.pumpErrors, pumpFailure)
}

// Wait drains both pump goroutines before waiting on the process so the pipes
// are fully consumed when os/exec closes them.
func (processHandle *osProcessHandle) Wait() (int, error) {
	processHandle.pumpWaitGroup.Wait()

	waitError := processHandle.command.Wait()
	if waitError != nil {
		if errors.Is(waitError, exec.ErrWaitDelay) {
			return processHandle.command.ProcessState.ExitCode(), nil
		}
		exitError := &exec.ExitError{}
		if errors.As(waitError, &exitError) {
			return exitError.ExitCode(), nil
		}
		return -1, waitError
	}

	return processHandle.command.ProcessState.ExitCode(), nil
}

// Kill forcefully terminates the process group and releases the output pipes
// so the pump goroutines observe EOF even when a forked descendant still holds
// the inherited write ends. Termination of an already exited process reports
// no error.
func (processHandle *osProcessHandle) Kill() error {
	killError := killProcessGroup(processHandle.command.Process)

	for _, pipeCloser := range processHandle.pipeClosers {
		_ = pipeCloser.Close()
	}

	return killError
}

// ProcessIdentifier returns the OS process identifier.
func (processHandle *osProcessHandle) ProcessIdentifier() int {
	if processHandle.command.Process == nil {
		return 0
	}
	return processHandle.command.Process.Pid
}

// PumpFailures returns errors collected while draining the output streams.
func (processHandle *osProcessHandle) PumpFailures() []error {
	processHandle.pumpErrorMutex.Lock()
	defer processHandle.pumpErrorMutex.Unlock()

	duplicatedFailures := make([]error, len(processHandle.pumpErrors))
	copy(duplicatedFailures, processHandle.pumpErrors)
	return duplicatedFailures
}

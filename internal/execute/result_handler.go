package execute

import (
	"context"
	"sync"
	"time"
)

const resultAlreadyRecordedMessageConstant = "execution result recorded more than once"

// ResultHandler receives exactly one completion callback for a background
// execution. The callbacks arrive on the execution goroutine, so handler
// implementations must be safe for cross-goroutine visibility.
type ResultHandler interface {
	// OnProcessComplete records a successful execution's exit value.
	OnProcessComplete(exitValue int)
	// OnProcessFailed records the failure that ended the execution.
	OnProcessFailed(failure error)
}

// DefaultResultHandler is a single-assignment completion cell with blocking
// waits. Recording a second result panics because each execution reports
// exactly once.
type DefaultResultHandler struct {
	completionSignal chan struct{}
	stateMutex       sync.Mutex
	completed        bool
	exitValue        int
	failure          error
}

// NewDefaultResultHandler constructs an empty completion cell.
func NewDefaultResultHandler() *DefaultResultHandler {
	return &DefaultResultHandler{completionSignal: make(chan struct{})}
}

// OnProcessComplete records the exit value of a successful execution.
func (resultHandler *DefaultResultHandler) OnProcessComplete(exitValue int) {
	resultHandler.record(exitValue, nil)
}

// OnProcessFailed records the failure that ended the execution.
func (resultHandler *DefaultResultHandler) OnProcessFailed(failure error) {
	resultHandler.record(0, failure)
}

func (resultHandler *DefaultResultHandler) record(exitValue int, failure error) {
	resultHandler.stateMutex.Lock()
	defer resultHandler.stateMutex.Unlock()

	if resultHandler.completed {
		panic(resultAlreadyRecordedMessageConstant)
	}

	resultHandler.completed = true
	resultHandler.exitValue = exitValue
	resultHandler.failure = failure
	close(resultHandler.completionSignal)
}

// Wait blocks until the execution completes or the context is done.
func (resultHandler *DefaultResultHandler) Wait(waitContext context.Context) error {
	select {
	case <-resultHandler.completionSignal:
		return nil
	case <-waitContext.Done():
		return waitContext.Err()
	}
}

// WaitFor blocks until the execution completes or the timeout elapses. An
// expired wait reports WaitTimeoutError and leaves the execution running.
func (resultHandler *DefaultResultHandler) WaitFor(waitTimeout time.Duration) error {
	waitTimer := time.NewTimer(waitTimeout)
	defer waitTimer.Stop()

	select {
	case <-resultHandler.completionSignal:
		return nil
	case <-waitTimer.C:
		return WaitTimeoutError{Timeout: waitTimeout}
	}
}

// Completed reports whether a result has been recorded.
func (resultHandler *DefaultResultHandler) Completed() bool {
	resultHandler.stateMutex.Lock()
	defer resultHandler.stateMutex.Unlock()
	return resultHandler.completed
}

// ExitValue returns the recorded exit value. It is meaningful only after a
// successful completion.
func (resultHandler *DefaultResultHandler) ExitValue() int {
	resultHandler.stateMutex.Lock()
	defer resultHandler.stateMutex.Unlock()
	return resultHandler.exitValue
}

// Failure returns the recorded failure, if any.
func (resultHandler *DefaultResultHandler) Failure() error {
	resultHandler.stateMutex.Lock()
	defer resultHandler.stateMutex.Unlock()
	return resultHandler.failure
}

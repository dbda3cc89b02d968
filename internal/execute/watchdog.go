package execute

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

const (
	watchdogStateIdle int32 = iota
	watchdogStateArmed
	watchdogStateDisarmed
	watchdogStateFired
)

const watchdogAlreadyArmedMessageConstant = "watchdog already armed"

// ErrWatchdogAlreadyArmed reports an attempt to bind a watchdog to a second process.
var ErrWatchdogAlreadyArmed = errors.New(watchdogAlreadyArmedMessageConstant)

// Watchdog forcibly terminates one monitored process after a deadline elapses.
// A watchdog binds to exactly one process and is never reused. The deadline
// timer and the process exit detector race; a single atomic state transition
// decides the winner, so the losing side's action degrades to a no-op.
type Watchdog struct {
	timeout               time.Duration
	state                 atomic.Int32
	deadlineTimer         *time.Timer
	terminationErrorMutex sync.Mutex
	terminationError      error
}

// NewWatchdog constructs an idle watchdog enforcing the provided timeout.
func NewWatchdog(timeout time.Duration) *Watchdog {
	return &Watchdog{timeout: timeout}
}

// Arm binds the watchdog to the running process and starts the deadline timer.
// The timeout is measured from this call, which the executor issues immediately
// after spawn confirmation.
func (watchdog *Watchdog) Arm(processHandle ProcessHandle) error {
	if !watchdog.state.CompareAndSwap(watchdogStateIdle, watchdogStateArmed) {
		return ErrWatchdogAlreadyArmed
	}

	watchdog.deadlineTimer = time.AfterFunc(watchdog.timeout, func() {
		if watchdog.state.CompareAndSwap(watchdogStateArmed, watchdogStateFired) {
			watchdog.recordTerminationFailure(processHandle.Kill())
		}
	})

	return nil
}

// Stop disarms the watchdog. Stopping after the deadline fired, stopping an
// idle watchdog, and stopping twice are all safe no-ops.
func (watchdog *Watchdog) Stop() {
	if watchdog.state.CompareAndSwap(watchdogStateArmed, watchdogStateDisarmed) {
		if watchdog.deadlineTimer != nil {
			watchdog.deadlineTimer.Stop()
		}
		return
	}

	watchdog.state.CompareAndSwap(watchdogStateIdle, watchdogStateDisarmed)
}

// KilledProcess reports whether the deadline elapsed and the watchdog
// terminated the monitored process.
func (watchdog *Watchdog) KilledProcess() bool {
	return watchdog.state.Load() == watchdogStateFired
}

// TerminationFailure returns the error raised by the forced termination, if any.
func (watchdog *Watchdog) TerminationFailure() error {
	watchdog.terminationErrorMutex.Lock()
	defer watchdog.terminationErrorMutex.Unlock()
	return watchdog.terminationError
}

func (watchdog *Watchdog) recordTerminationFailure(terminationFailure error) {
	if terminationFailure == nil {
		return
	}

	watchdog.terminationErrorMutex.Lock()
	defer watchdog.terminationErrorMutex.Unlock()
	watchdog.terminationError = terminationFailure
}

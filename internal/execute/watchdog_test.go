package execute_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/runcmd/internal/execute"
)

func TestWatchdogKillsAfterDeadline(testInstance *testing.T) {
	processHandle := newFakeProcessHandle(0)
	processHandle.waitDelay = time.Second

	watchdog := execute.NewWatchdog(10 * time.Millisecond)
	require.NoError(testInstance, watchdog.Arm(processHandle))

	exitValue, waitError := processHandle.Wait()
	require.NoError(testInstance, waitError)
	require.Equal(testInstance, -1, exitValue)
	require.True(testInstance, watchdog.KilledProcess())
	require.NoError(testInstance, watchdog.TerminationFailure())

	// the losing disarm is a safe no-op
	watchdog.Stop()
	require.True(testInstance, watchdog.KilledProcess())
}

func TestWatchdogDisarmBeforeDeadline(testInstance *testing.T) {
	processHandle := newFakeProcessHandle(0)

	watchdog := execute.NewWatchdog(time.Hour)
	require.NoError(testInstance, watchdog.Arm(processHandle))

	watchdog.Stop()
	watchdog.Stop()
	require.False(testInstance, watchdog.KilledProcess())
}

func TestWatchdogRejectsSecondArm(testInstance *testing.T) {
	watchdog := execute.NewWatchdog(time.Hour)
	require.NoError(testInstance, watchdog.Arm(newFakeProcessHandle(0)))
	require.ErrorIs(testInstance, watchdog.Arm(newFakeProcessHandle(0)), execute.ErrWatchdogAlreadyArmed)
	watchdog.Stop()
}

func TestWatchdogStopBeforeArm(testInstance *testing.T) {
	watchdog := execute.NewWatchdog(time.Hour)
	watchdog.Stop()
	require.ErrorIs(testInstance, watchdog.Arm(newFakeProcessHandle(0)), execute.ErrWatchdogAlreadyArmed)
	require.False(testInstance, watchdog.KilledProcess())
}

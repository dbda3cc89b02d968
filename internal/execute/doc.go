// Package execute orchestrates external process execution: launching OS
// processes from resolved command lines, pumping their output streams on
// dedicated goroutines, enforcing watchdog deadlines, validating exit values,
// and reporting completion either synchronously or through a result handler
// invoked on a background goroutine.
package execute

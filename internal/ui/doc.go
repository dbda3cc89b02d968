// Package ui renders process lifecycle events as human-readable console
// messages.
//
// CommandEventFormatter turns start, completion, and failure events into
// concise one-line summaries, and ConsoleCommandEventLogger forwards those
// summaries through a zap logger when console output is selected.
package ui

package ui

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/runcmd/internal/execute"
)

const (
	commandStartedMessageTemplateConstant   = "Running %s"
	commandCompletedMessageTemplateConstant = "Completed %s in %s"
	commandFailedMessageTemplateConstant    = "%s failed: %s"
	commandTimedOutMessageTemplateConstant  = "%s timed out and was terminated"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
)

// CommandEventFormatter builds human-readable messages for command lifecycle events.
type CommandEventFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandEventFormatter) BuildStartedMessage(event execute.CommandEvent) string {
	return fmt.Sprintf(commandStartedMessageTemplateConstant, formatter.formatCommandLabel(event))
}

// BuildCompletedMessage formats the message describing a command that finished within its exit policy.
func (formatter CommandEventFormatter) BuildCompletedMessage(event execute.CommandEvent, result execute.ExecutionResult) string {
	return fmt.Sprintf(commandCompletedMessageTemplateConstant, formatter.formatCommandLabel(event), result.Duration)
}

// BuildFailureMessage formats the message describing a command that failed to launch, run, or satisfy its exit policy.
func (formatter CommandEventFormatter) BuildFailureMessage(event execute.CommandEvent, failure error) string {
	exitValueFailure := execute.ExitValueError{}
	exitValueRejected := errors.As(failure, &exitValueFailure)
	if exitValueRejected && exitValueFailure.WatchdogKilled {
		return fmt.Sprintf(commandTimedOutMessageTemplateConstant, formatter.formatCommandLabel(event))
	}
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	baseMessage := fmt.Sprintf(commandFailedMessageTemplateConstant, formatter.formatCommandLabel(event), failureMessage)
	if exitValueRejected {
		standardErrorSuffix := formatter.formatStandardErrorSuffix(exitValueFailure.StandardError)
		if len(standardErrorSuffix) > 0 {
			return baseMessage + standardErrorSuffix
		}
	}
	return baseMessage
}

func (formatter CommandEventFormatter) formatCommandLabel(event execute.CommandEvent) string {
	return fmt.Sprintf(commandLabelTemplateConstant, event.CommandLine, formatter.formatWorkingDirectorySuffix(event))
}

func (formatter CommandEventFormatter) formatWorkingDirectorySuffix(event execute.CommandEvent) string {
	trimmedWorkingDirectory := strings.TrimSpace(event.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandEventFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

// ConsoleCommandEventLogger renders command lifecycle events using a zap logger configured for human-readable output.
type ConsoleCommandEventLogger struct {
	logger    *zap.Logger
	formatter CommandEventFormatter
}

// NewConsoleCommandEventLogger constructs a console event logger backed by the provided zap logger.
func NewConsoleCommandEventLogger(logger *zap.Logger) *ConsoleCommandEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleCommandEventLogger{logger: logger, formatter: CommandEventFormatter{}}
}

// CommandStarted implements execute.CommandEventObserver by logging command start notifications.
func (eventLogger *ConsoleCommandEventLogger) CommandStarted(event execute.CommandEvent) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Info(eventLogger.formatter.BuildStartedMessage(event))
}

// CommandCompleted implements execute.CommandEventObserver by logging command completion notifications.
func (eventLogger *ConsoleCommandEventLogger) CommandCompleted(event execute.CommandEvent, result execute.ExecutionResult) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Info(eventLogger.formatter.BuildCompletedMessage(event, result))
}

// CommandFailed implements execute.CommandEventObserver by logging launch failures, execution failures, and rejected exit values.
func (eventLogger *ConsoleCommandEventLogger) CommandFailed(event execute.CommandEvent, failure error) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Error(eventLogger.formatter.BuildFailureMessage(event, failure))
}

// Package run assembles the command that builds a command line from CLI
// arguments and executes it with stream capture, exit policies, and an
// optional watchdog timeout.
package run

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/temirov/runcmd/internal/cmdline"
	"github.com/temirov/runcmd/internal/execute"
	"github.com/temirov/runcmd/internal/recovery"
	"github.com/temirov/runcmd/internal/ui"
	"github.com/temirov/runcmd/internal/utils"
	flagutils "github.com/temirov/runcmd/internal/utils/flags"
	pathutils "github.com/temirov/runcmd/internal/utils/path"
)

const (
	commandUseConstant                    = "run -- executable [arguments...]"
	commandShortDescriptionConstant       = "Execute an external command"
	commandLongDescriptionConstant        = "run launches an external command with captured output streams, configurable exit code acceptance, and an optional watchdog that kills the process on timeout.\n\nA single argument is parsed as a full quoted command line; multiple arguments are treated as an executable followed by literal argument values."
	commandRequiredMessageConstant        = "command required; provide an executable after --"
	commandLineParseErrorTemplateConstant = "unable to build command line: %w"
	timeoutParseErrorTemplateConstant     = "invalid timeout %q: %w"
	executorConstructionErrorTemplate     = "unable to construct executor: %w"
	backgroundExecutionErrorTemplate      = "unable to launch background command: %w"
)

// CommandBuilder assembles the run command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	Launcher                     execute.ProcessLauncher
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration

	processFlagValues  *flagutils.ProcessFlagValues
	behaviorFlagValues *flagutils.BehaviorFlagValues
}

// Build constructs the run command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.ArbitraryArgs,
		RunE:  builder.run,
	}

	builder.processFlagValues = flagutils.BindProcessFlags(command, flagutils.ProcessFlagValues{}, flagutils.ProcessFlagDefinitions{
		WorkingDirectory: flagutils.ProcessFlagDefinition{Enabled: true},
		Timeout:          flagutils.ProcessFlagDefinition{Enabled: true},
		ExitCodes:        flagutils.ProcessFlagDefinition{Enabled: true},
		Environment:      flagutils.ProcessFlagDefinition{Enabled: true},
		Substitutions:    flagutils.ProcessFlagDefinition{Enabled: true},
	})
	builder.behaviorFlagValues = flagutils.BindBehaviorFlags(command, flagutils.BehaviorDefaults{}, flagutils.BehaviorFlagDefinitions{
		AnyExitCode: flagutils.BehaviorFlagDefinition{Name: flagutils.AnyExitCodeFlagName, Usage: flagutils.AnyExitCodeFlagUsage, Enabled: true},
		Background:  flagutils.BehaviorFlagDefinition{Name: flagutils.BackgroundFlagName, Usage: flagutils.BackgroundFlagUsage, Enabled: true},
		Strict:      flagutils.BehaviorFlagDefinition{Name: flagutils.StrictFlagName, Usage: flagutils.StrictFlagUsage, Enabled: true},
		Trace:       flagutils.BehaviorFlagDefinition{Name: flagutils.TraceFlagName, Usage: flagutils.TraceFlagUsage, Enabled: true},
	})

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) == 0 {
		if helpError := displayCommandHelp(command); helpError != nil {
			return helpError
		}
		return errors.New(commandRequiredMessageConstant)
	}

	commandConfiguration := builder.resolveConfiguration()
	effective, effectiveError := builder.resolveEffectiveSettings(command, commandConfiguration)
	if effectiveError != nil {
		return effectiveError
	}

	commandLine, commandLineError := buildCommandLine(arguments, effective.substitutions)
	if commandLineError != nil {
		return fmt.Errorf(commandLineParseErrorTemplateConstant, commandLineError)
	}

	logger := resolveLogger(builder.LoggerProvider)

	executorOptions := []execute.ExecutorOption{
		execute.WithStandardOutput(utils.NewFlushingWriter(command.OutOrStdout())),
		execute.WithStandardError(utils.NewFlushingWriter(command.ErrOrStderr())),
		execute.WithStandardInput(command.InOrStdin()),
		execute.WithExitPolicy(effective.exitPolicy),
		execute.WithRecoveryPolicy(recovery.Policy{Strict: effective.strict, Trace: effective.trace}),
	}
	if len(effective.workingDirectory) > 0 {
		executorOptions = append(executorOptions, execute.WithWorkingDirectory(effective.workingDirectory))
	}
	if len(effective.environment) > 0 {
		executorOptions = append(executorOptions, execute.WithEnvironment(effective.environment))
	}
	if effective.timeout > 0 {
		executorOptions = append(executorOptions, execute.WithWatchdogTimeout(effective.timeout))
	}
	if builder.humanReadableLoggingEnabled() {
		executorOptions = append(executorOptions, execute.WithEventObserver(ui.NewConsoleCommandEventLogger(logger)))
	}

	executor, executorError := execute.NewExecutor(logger, builder.resolveLauncher(), executorOptions...)
	if executorError != nil {
		return fmt.Errorf(executorConstructionErrorTemplate, executorError)
	}

	if effective.background {
		return runInBackground(command, executor, commandLine)
	}

	_, executionError := executor.Execute(command.Context(), commandLine)
	return executionError
}

type effectiveSettings struct {
	workingDirectory string
	timeout          time.Duration
	exitPolicy       execute.ExitPolicy
	environment      map[string]string
	substitutions    map[string]string
	background       bool
	strict           bool
	trace            bool
}

func (builder *CommandBuilder) resolveEffectiveSettings(command *cobra.Command, commandConfiguration CommandConfiguration) (effectiveSettings, error) {
	settings := effectiveSettings{
		workingDirectory: commandConfiguration.WorkingDirectory,
		background:       commandConfiguration.Background,
		strict:           commandConfiguration.Strict,
		trace:            commandConfiguration.Trace,
	}

	flagSet := command.Flags()
	if flagSet.Changed(flagutils.WorkingDirectoryFlagName) {
		settings.workingDirectory = builder.processFlagValues.WorkingDirectory
	}
	settings.workingDirectory = pathutils.NewHomeExpander().Expand(settings.workingDirectory)

	timeoutText := commandConfiguration.Timeout
	if flagSet.Changed(flagutils.TimeoutFlagName) {
		timeoutText = builder.processFlagValues.Timeout
	}
	if len(timeoutText) > 0 {
		parsedTimeout, timeoutError := time.ParseDuration(timeoutText)
		if timeoutError != nil {
			return effectiveSettings{}, fmt.Errorf(timeoutParseErrorTemplateConstant, timeoutText, timeoutError)
		}
		settings.timeout = parsedTimeout
	}

	if flagSet.Changed(flagutils.BackgroundFlagName) {
		settings.background = builder.behaviorFlagValues.Background
	}
	if flagSet.Changed(flagutils.StrictFlagName) {
		settings.strict = builder.behaviorFlagValues.Strict
	}
	if flagSet.Changed(flagutils.TraceFlagName) {
		settings.trace = builder.behaviorFlagValues.Trace
	}

	anyExitCode := commandConfiguration.AnyExitCode
	if flagSet.Changed(flagutils.AnyExitCodeFlagName) {
		anyExitCode = builder.behaviorFlagValues.AnyExitCode
	}
	acceptedExitCodes := commandConfiguration.ExitCodes
	if flagSet.Changed(flagutils.ExitCodesFlagName) {
		acceptedExitCodes = builder.processFlagValues.ExitCodes
	}
	settings.exitPolicy = resolveExitPolicy(anyExitCode, acceptedExitCodes)

	environmentOverrides, environmentError := parseAssignments(builder.processFlagValues.Environment, environmentAssignmentLabelConstant)
	if environmentError != nil {
		return effectiveSettings{}, environmentError
	}
	settings.environment = mergeAssignments(commandConfiguration.Environment, environmentOverrides)

	substitutionOverrides, substitutionError := parseAssignments(builder.processFlagValues.Substitutions, substitutionAssignmentLabelConstant)
	if substitutionError != nil {
		return effectiveSettings{}, substitutionError
	}
	settings.substitutions = mergeAssignments(commandConfiguration.Substitutions, substitutionOverrides)

	return settings, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLauncher() execute.ProcessLauncher {
	if builder.Launcher != nil {
		return builder.Launcher
	}
	return execute.NewOSProcessLauncher()
}

func (builder *CommandBuilder) humanReadableLoggingEnabled() bool {
	if builder.HumanReadableLoggingProvider == nil {
		return false
	}
	return builder.HumanReadableLoggingProvider()
}

func buildCommandLine(arguments []string, substitutions map[string]string) (*cmdline.CommandLine, error) {
	var commandLine *cmdline.CommandLine
	var commandLineError error

	if len(arguments) == 1 {
		commandLine, commandLineError = cmdline.Parse(arguments[0])
	} else {
		commandLine, commandLineError = cmdline.NewCommandLine(arguments[0])
		if commandLineError == nil {
			commandLineError = commandLine.AddArgumentValues(arguments[1:])
		}
	}
	if commandLineError != nil {
		return nil, commandLineError
	}

	if len(substitutions) > 0 {
		substitutionMap := make(map[string]any, len(substitutions))
		for substitutionName, substitutionValue := range substitutions {
			substitutionMap[substitutionName] = substitutionValue
		}
		commandLine.SetSubstitutionMap(substitutionMap)
	}

	return commandLine, nil
}

func resolveExitPolicy(anyExitCode bool, acceptedExitCodes []int) execute.ExitPolicy {
	if anyExitCode {
		return execute.AnyExitValue()
	}
	if len(acceptedExitCodes) > 0 {
		return execute.ExitValues(acceptedExitCodes...)
	}
	return execute.DefaultExitPolicy()
}

func runInBackground(command *cobra.Command, executor *execute.Executor, commandLine *cmdline.CommandLine) error {
	resultHandler := execute.NewDefaultResultHandler()
	if launchError := executor.ExecuteAsync(command.Context(), commandLine, resultHandler); launchError != nil {
		return fmt.Errorf(backgroundExecutionErrorTemplate, launchError)
	}

	if waitError := resultHandler.Wait(command.Context()); waitError != nil {
		return waitError
	}

	return resultHandler.Failure()
}

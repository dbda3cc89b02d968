// Package job assembles the command that executes a job definition loaded
// from a YAML or JSON file.
package job

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/runcmd/internal/execute"
	"github.com/temirov/runcmd/internal/jobfile"
	"github.com/temirov/runcmd/internal/recovery"
	"github.com/temirov/runcmd/internal/ui"
	"github.com/temirov/runcmd/internal/utils"
	flagutils "github.com/temirov/runcmd/internal/utils/flags"
	pathutils "github.com/temirov/runcmd/internal/utils/path"
)

const (
	commandUseConstant                    = "job [path]"
	commandShortDescriptionConstant       = "Execute a job definition file"
	commandLongDescriptionConstant        = "job loads a command definition from a YAML or JSON file and executes it with the configured streams, exit policy, and watchdog timeout."
	fileFlagNameConstant                  = "file"
	fileFlagUsageConstant                 = "Path to the job definition file"
	jobFilePathRequiredMessageConstant    = "job definition path required; provide a positional argument or --file flag"
	loadDefinitionErrorTemplateConstant   = "unable to load job definition: %w"
	buildCommandLineErrorTemplateConstant = "unable to build job command line: %w"
	executorOptionsErrorTemplateConstant  = "unable to assemble executor options: %w"
	executorConstructionErrorTemplate     = "unable to construct executor: %w"
	backgroundExecutionErrorTemplate      = "unable to launch background job: %w"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the job command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	Launcher                     execute.ProcessLauncher
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration

	jobFilePathFlagValue string
	behaviorFlagValues   *flagutils.BehaviorFlagValues
}

// Build constructs the job command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE:  builder.run,
	}

	command.Flags().StringVar(&builder.jobFilePathFlagValue, fileFlagNameConstant, "", fileFlagUsageConstant)
	builder.behaviorFlagValues = flagutils.BindBehaviorFlags(command, flagutils.BehaviorDefaults{}, flagutils.BehaviorFlagDefinitions{
		Strict: flagutils.BehaviorFlagDefinition{Name: flagutils.StrictFlagName, Usage: flagutils.StrictFlagUsage, Enabled: true},
		Trace:  flagutils.BehaviorFlagDefinition{Name: flagutils.TraceFlagName, Usage: flagutils.TraceFlagUsage, Enabled: true},
	})

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	commandConfiguration := builder.resolveConfiguration()

	jobFilePath := builder.resolveJobFilePath(command, arguments, commandConfiguration)
	if len(jobFilePath) == 0 {
		if helpError := displayCommandHelp(command); helpError != nil {
			return helpError
		}
		return errors.New(jobFilePathRequiredMessageConstant)
	}

	definition, definitionError := jobfile.Load(jobFilePath)
	if definitionError != nil {
		return fmt.Errorf(loadDefinitionErrorTemplateConstant, definitionError)
	}

	commandLine, commandLineError := definition.CommandLine()
	if commandLineError != nil {
		return fmt.Errorf(buildCommandLineErrorTemplateConstant, commandLineError)
	}

	executorOptions, optionsError := definition.ExecutorOptions()
	if optionsError != nil {
		return fmt.Errorf(executorOptionsErrorTemplateConstant, optionsError)
	}

	logger := resolveLogger(builder.LoggerProvider)
	recoveryPolicy := builder.resolveRecoveryPolicy(command, commandConfiguration)

	executorOptions = append(executorOptions,
		execute.WithStandardOutput(utils.NewFlushingWriter(command.OutOrStdout())),
		execute.WithStandardError(utils.NewFlushingWriter(command.ErrOrStderr())),
		execute.WithStandardInput(command.InOrStdin()),
		execute.WithRecoveryPolicy(recoveryPolicy),
	)
	if builder.humanReadableLoggingEnabled() {
		executorOptions = append(executorOptions, execute.WithEventObserver(ui.NewConsoleCommandEventLogger(logger)))
	}

	executor, executorError := execute.NewExecutor(logger, builder.resolveLauncher(), executorOptions...)
	if executorError != nil {
		return fmt.Errorf(executorConstructionErrorTemplate, executorError)
	}

	if definition.Background {
		resultHandler := execute.NewDefaultResultHandler()
		if launchError := executor.ExecuteAsync(command.Context(), commandLine, resultHandler); launchError != nil {
			return fmt.Errorf(backgroundExecutionErrorTemplate, launchError)
		}
		if waitError := resultHandler.Wait(command.Context()); waitError != nil {
			return waitError
		}
		return resultHandler.Failure()
	}

	_, executionError := executor.Execute(command.Context(), commandLine)
	return executionError
}

func (builder *CommandBuilder) resolveJobFilePath(command *cobra.Command, arguments []string, commandConfiguration CommandConfiguration) string {
	if len(arguments) > 0 {
		positionalPath := strings.TrimSpace(arguments[0])
		if len(positionalPath) > 0 {
			return pathutils.NewHomeExpander().Expand(positionalPath)
		}
	}

	if command != nil && command.Flags().Changed(fileFlagNameConstant) {
		flagPath := strings.TrimSpace(builder.jobFilePathFlagValue)
		if len(flagPath) > 0 {
			return pathutils.NewHomeExpander().Expand(flagPath)
		}
	}

	configuredPath := strings.TrimSpace(commandConfiguration.File)
	if len(configuredPath) > 0 {
		expandedPath := pathutils.NewHomeExpander().Expand(configuredPath)
		return resolveAgainstConfigurationDirectory(command, expandedPath)
	}

	return ""
}

// resolveAgainstConfigurationDirectory anchors a relative configured job path
// to the directory of the configuration file that supplied it, so a job file
// referenced next to the configuration resolves regardless of the working
// directory the CLI runs from.
func resolveAgainstConfigurationDirectory(command *cobra.Command, configuredPath string) string {
	if filepath.IsAbs(configuredPath) || command == nil {
		return configuredPath
	}

	configurationFilePath, configurationFileAvailable := utils.NewCommandContextAccessor().ConfigurationFilePath(command.Context())
	if !configurationFileAvailable || len(strings.TrimSpace(configurationFilePath)) == 0 {
		return configuredPath
	}

	return filepath.Join(filepath.Dir(configurationFilePath), configuredPath)
}

func (builder *CommandBuilder) resolveRecoveryPolicy(command *cobra.Command, commandConfiguration CommandConfiguration) recovery.Policy {
	policy := recovery.Policy{Strict: commandConfiguration.Strict, Trace: commandConfiguration.Trace}
	if command == nil {
		return policy
	}

	flagSet := command.Flags()
	if flagSet.Changed(flagutils.StrictFlagName) {
		policy.Strict = builder.behaviorFlagValues.Strict
	}
	if flagSet.Changed(flagutils.TraceFlagName) {
		policy.Trace = builder.behaviorFlagValues.Trace
	}
	return policy
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

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func displayCommandHelp(command *cobra.Command) error {
	if command == nil {
		return nil
	}
	return command.Help()
}

package flags

import "github.com/spf13/cobra"

const (
	// WorkingDirectoryFlagName exposes the shared working directory flag name.
	WorkingDirectoryFlagName = "workdir"
	// WorkingDirectoryFlagUsage describes the shared working directory flag purpose.
	WorkingDirectoryFlagUsage = "Working directory for the launched process"
	// TimeoutFlagName exposes the shared watchdog timeout flag name.
	TimeoutFlagName = "timeout"
	// TimeoutFlagUsage describes the shared watchdog timeout flag purpose.
	TimeoutFlagUsage = "Kill the process after this duration (for example 30s or 2m)"
	// ExitCodesFlagName exposes the shared accepted exit codes flag name.
	ExitCodesFlagName = "exit-codes"
	// ExitCodesFlagUsage describes the shared accepted exit codes flag purpose.
	ExitCodesFlagUsage = "Exit codes treated as success (repeatable)"
	// EnvironmentFlagName exposes the shared environment assignment flag name.
	EnvironmentFlagName = "env"
	// EnvironmentFlagUsage describes the shared environment assignment flag purpose.
	EnvironmentFlagUsage = "Additional KEY=VALUE environment assignments (repeatable)"
	// SubstitutionFlagName exposes the shared placeholder substitution flag name.
	SubstitutionFlagName = "substitute"
	// SubstitutionFlagUsage describes the shared placeholder substitution flag purpose.
	SubstitutionFlagUsage = "NAME=VALUE substitutions applied to ${NAME} placeholders (repeatable)"
)

// ProcessFlagDefinition captures configuration for a single process context flag.
type ProcessFlagDefinition struct {
	Name    string
	Usage   string
	Enabled bool
}

// ProcessFlagDefinitions groups process context flag definitions.
type ProcessFlagDefinitions struct {
	WorkingDirectory ProcessFlagDefinition
	Timeout          ProcessFlagDefinition
	ExitCodes        ProcessFlagDefinition
	Environment      ProcessFlagDefinition
	Substitutions    ProcessFlagDefinition
}

// ProcessFlagValues stores process context flag values.
type ProcessFlagValues struct {
	WorkingDirectory string
	Timeout          string
	ExitCodes        []int
	Environment      []string
	Substitutions    []string
}

// BindProcessFlags attaches process context flags to the provided command.
func BindProcessFlags(command *cobra.Command, defaults ProcessFlagValues, definitions ProcessFlagDefinitions) *ProcessFlagValues {
	values := ProcessFlagValues{
		WorkingDirectory: defaults.WorkingDirectory,
		Timeout:          defaults.Timeout,
		ExitCodes:        append([]int{}, defaults.ExitCodes...),
		Environment:      append([]string{}, defaults.Environment...),
		Substitutions:    append([]string{}, defaults.Substitutions...),
	}
	if command == nil {
		return &values
	}

	flagSet := command.Flags()
	if definitions.WorkingDirectory.Enabled {
		flagSet.StringVar(&values.WorkingDirectory, resolveFlagName(definitions.WorkingDirectory.Name, WorkingDirectoryFlagName), values.WorkingDirectory, resolveFlagUsage(definitions.WorkingDirectory.Usage, WorkingDirectoryFlagUsage))
	}
	if definitions.Timeout.Enabled {
		flagSet.StringVar(&values.Timeout, resolveFlagName(definitions.Timeout.Name, TimeoutFlagName), values.Timeout, resolveFlagUsage(definitions.Timeout.Usage, TimeoutFlagUsage))
	}
	if definitions.ExitCodes.Enabled {
		flagSet.IntSliceVar(&values.ExitCodes, resolveFlagName(definitions.ExitCodes.Name, ExitCodesFlagName), values.ExitCodes, resolveFlagUsage(definitions.ExitCodes.Usage, ExitCodesFlagUsage))
	}
	if definitions.Environment.Enabled {
		flagSet.StringSliceVar(&values.Environment, resolveFlagName(definitions.Environment.Name, EnvironmentFlagName), values.Environment, resolveFlagUsage(definitions.Environment.Usage, EnvironmentFlagUsage))
	}
	if definitions.Substitutions.Enabled {
		flagSet.StringArrayVar(&values.Substitutions, resolveFlagName(definitions.Substitutions.Name, SubstitutionFlagName), values.Substitutions, resolveFlagUsage(definitions.Substitutions.Usage, SubstitutionFlagUsage))
	}

	return &values
}

func resolveFlagName(candidate string, fallback string) string {
	if len(candidate) > 0 {
		return candidate
	}
	return fallback
}

func resolveFlagUsage(candidate string, fallback string) string {
	if len(candidate) > 0 {
		return candidate
	}
	return fallback
}

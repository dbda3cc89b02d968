// Package flags provides helpers for binding standardized execution flags to Cobra commands.
package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	// AnyExitCodeFlagName exposes the shared wildcard exit policy flag name.
	AnyExitCodeFlagName = "any-exit-code"
	// AnyExitCodeFlagUsage describes the shared wildcard exit policy flag purpose.
	AnyExitCodeFlagUsage = "Accept every exit code as success"
	// BackgroundFlagName exposes the shared background execution flag name.
	BackgroundFlagName = "background"
	// BackgroundFlagUsage describes the shared background execution flag purpose.
	BackgroundFlagUsage = "Launch without blocking and collect the result through a handler"
	// StrictFlagName exposes the shared strict recovery flag name.
	StrictFlagName = "strict"
	// StrictFlagUsage describes the shared strict recovery flag purpose.
	StrictFlagUsage = "Report cleanup failures instead of logging and continuing"
	// TraceFlagName exposes the shared trace recovery flag name.
	TraceFlagName = "trace"
	// TraceFlagUsage describes the shared trace recovery flag purpose.
	TraceFlagUsage = "Log suppressed cleanup failures"
)

// BehaviorDefaults describes default toggle values shared across commands.
type BehaviorDefaults struct {
	AnyExitCode bool
	Background  bool
	Strict      bool
	Trace       bool
}

// BehaviorFlagDefinition captures a single toggle flag's configuration.
type BehaviorFlagDefinition struct {
	Name      string
	Usage     string
	Shorthand string
	Enabled   bool
}

// BehaviorFlagDefinitions groups behavior toggle definitions.
type BehaviorFlagDefinitions struct {
	AnyExitCode BehaviorFlagDefinition
	Background  BehaviorFlagDefinition
	Strict      BehaviorFlagDefinition
	Trace       BehaviorFlagDefinition
}

// BehaviorFlagValues stores behavior toggle values.
type BehaviorFlagValues struct {
	AnyExitCode bool
	Background  bool
	Strict      bool
	Trace       bool
}

// BindBehaviorFlags attaches standardized behavior toggles to the provided command.
func BindBehaviorFlags(command *cobra.Command, defaults BehaviorDefaults, definitions BehaviorFlagDefinitions) *BehaviorFlagValues {
	values := BehaviorFlagValues{
		AnyExitCode: defaults.AnyExitCode,
		Background:  defaults.Background,
		Strict:      defaults.Strict,
		Trace:       defaults.Trace,
	}
	if command == nil {
		return &values
	}

	flagSet := command.Flags()
	bindToggleFlag(flagSet, definitions.AnyExitCode, &values.AnyExitCode, defaults.AnyExitCode)
	bindToggleFlag(flagSet, definitions.Background, &values.Background, defaults.Background)
	bindToggleFlag(flagSet, definitions.Strict, &values.Strict, defaults.Strict)
	bindToggleFlag(flagSet, definitions.Trace, &values.Trace, defaults.Trace)

	return &values
}

func bindToggleFlag(flagSet *pflag.FlagSet, definition BehaviorFlagDefinition, target *bool, defaultValue bool) {
	if flagSet == nil {
		return
	}
	if !definition.Enabled {
		return
	}
	if len(definition.Name) == 0 {
		return
	}

	AddToggleFlag(flagSet, target, definition.Name, definition.Shorthand, defaultValue, definition.Usage)
}

package run

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	assignmentSeparatorConstant              = "="
	invalidAssignmentErrorTemplateConstant   = "invalid %s assignment %q; expected NAME=VALUE"
	environmentAssignmentLabelConstant       = "environment"
	substitutionAssignmentLabelConstant      = "substitution"
	assignmentNameRequiredTemplateConstant   = "invalid %s assignment %q; name must not be empty"
	assignmentExpectedSeparatorCountConstant = 2
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

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

// parseAssignments converts NAME=VALUE pairs into a map, preserving later
// assignments over earlier ones.
func parseAssignments(assignments []string, assignmentLabel string) (map[string]string, error) {
	if len(assignments) == 0 {
		return nil, nil
	}

	parsed := make(map[string]string, len(assignments))
	for _, assignment := range assignments {
		separated := strings.SplitN(assignment, assignmentSeparatorConstant, assignmentExpectedSeparatorCountConstant)
		if len(separated) != assignmentExpectedSeparatorCountConstant {
			return nil, fmt.Errorf(invalidAssignmentErrorTemplateConstant, assignmentLabel, assignment)
		}

		assignmentName := strings.TrimSpace(separated[0])
		if len(assignmentName) == 0 {
			return nil, fmt.Errorf(assignmentNameRequiredTemplateConstant, assignmentLabel, assignment)
		}

		parsed[assignmentName] = separated[1]
	}

	return parsed, nil
}

func mergeAssignments(configured map[string]string, overrides map[string]string) map[string]string {
	if len(configured) == 0 && len(overrides) == 0 {
		return nil
	}

	merged := make(map[string]string, len(configured)+len(overrides))
	for assignmentName, assignmentValue := range configured {
		merged[assignmentName] = assignmentValue
	}
	for assignmentName, assignmentValue := range overrides {
		merged[assignmentName] = assignmentValue
	}
	return merged
}

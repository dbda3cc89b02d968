package flags

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatChoiceUsage(testInstance *testing.T) {
	testCases := []struct {
		name           string
		defaultChoice  string
		choices        []string
		description    string
		expectedOutput string
	}{
		{
			name:           "DefaultFirstChoice",
			defaultChoice:  "structured",
			choices:        []string{"structured", "console"},
			description:    "Set the log output format.",
			expectedOutput: "`<STRUCTURED|console>` Set the log output format.",
		},
		{
			name:           "DefaultMiddleChoice",
			defaultChoice:  "info",
			choices:        []string{"debug", "info", "warn", "error"},
			description:    "Set the logging verbosity.",
			expectedOutput: "`<debug|INFO|warn|error>` Set the logging verbosity.",
		},
		{
			name:           "EmptyDescription",
			defaultChoice:  "console",
			choices:        []string{"structured", "console"},
			description:    "",
			expectedOutput: "`<structured|CONSOLE>`",
		},
		{
			name:           "DuplicateChoicesIgnored",
			defaultChoice:  "info",
			choices:        []string{"info", "info", "debug", "debug"},
			description:    "Select a verbosity.",
			expectedOutput: "`<INFO|debug>` Select a verbosity.",
		},
		{
			name:           "WhitespaceTrimmed",
			defaultChoice:  "warn",
			choices:        []string{" warn ", " error "},
			description:    "Pick a threshold.",
			expectedOutput: "`<WARN|error>` Pick a threshold.",
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			actualOutput := FormatChoiceUsage(testCase.defaultChoice, testCase.choices, testCase.description)
			require.Equal(testInstance, testCase.expectedOutput, actualOutput)
		})
	}
}

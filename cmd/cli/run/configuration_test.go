package run_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	runcommand "github.com/temirov/runcmd/cmd/cli/run"
)

func TestCommandConfigurationSanitize(testInstance *testing.T) {
	testCases := []struct {
		name          string
		configuration runcommand.CommandConfiguration
		expected      runcommand.CommandConfiguration
	}{
		{
			name:          "empty_configuration_gains_default_exit_codes",
			configuration: runcommand.CommandConfiguration{},
			expected:      runcommand.CommandConfiguration{ExitCodes: []int{0}},
		},
		{
			name:          "whitespace_trimmed",
			configuration: runcommand.CommandConfiguration{WorkingDirectory: " /tmp ", Timeout: " 30s ", ExitCodes: []int{0, 1}},
			expected:      runcommand.CommandConfiguration{WorkingDirectory: "/tmp", Timeout: "30s", ExitCodes: []int{0, 1}},
		},
		{
			name:          "wildcard_policy_keeps_empty_exit_codes",
			configuration: runcommand.CommandConfiguration{AnyExitCode: true},
			expected:      runcommand.CommandConfiguration{AnyExitCode: true},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, testCase.configuration.Sanitize())
		})
	}
}

func TestDefaultConfigurationValuesArePrefixed(testInstance *testing.T) {
	defaults := runcommand.DefaultConfigurationValues("tools.run")

	require.Equal(testInstance, []int{0}, defaults["tools.run.exit_codes"])
	require.Equal(testInstance, false, defaults["tools.run.any_exit_code"])
	require.Equal(testInstance, false, defaults["tools.run.background"])
	require.Equal(testInstance, false, defaults["tools.run.strict"])
	require.Equal(testInstance, false, defaults["tools.run.trace"])
}

package run_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	runcommand "github.com/temirov/runcmd/cmd/cli/run"
	"github.com/temirov/runcmd/internal/execute"
)

const (
	testExecutableNameConstant     = "convert"
	testStandardOutputTextConstant = "converted 1 page\n"
)

type fakeProcessHandle struct {
	exitValue int
}

func (processHandle *fakeProcessHandle) Wait() (int, error) {
	return processHandle.exitValue, nil
}

func (processHandle *fakeProcessHandle) Kill() error {
	return nil
}

func (processHandle *fakeProcessHandle) ProcessIdentifier() int {
	return 4242
}

func (processHandle *fakeProcessHandle) PumpFailures() []error {
	return nil
}

type recordingProcessLauncher struct {
	launchSpecifications []execute.LaunchSpec
	exitValue            int
	standardOutputText   string
}

func (launcher *recordingProcessLauncher) Launch(_ context.Context, specification execute.LaunchSpec) (execute.ProcessHandle, error) {
	launcher.launchSpecifications = append(launcher.launchSpecifications, specification)
	if len(launcher.standardOutputText) > 0 && specification.StandardOutput != nil {
		_, _ = specification.StandardOutput.Write([]byte(launcher.standardOutputText))
	}
	return &fakeProcessHandle{exitValue: launcher.exitValue}, nil
}

func executeRunCommand(testInstance *testing.T, launcher *recordingProcessLauncher, configuration *runcommand.CommandConfiguration, commandArguments []string) (string, error) {
	testInstance.Helper()

	builder := runcommand.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return zap.NewNop()
		},
		Launcher: launcher,
	}
	if configuration != nil {
		builder.ConfigurationProvider = func() runcommand.CommandConfiguration {
			return *configuration
		}
	}

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(&bytes.Buffer{})
	command.SetArgs(commandArguments)

	executionError := command.Execute()
	return outputBuffer.String(), executionError
}

func TestRunCommandBuildsArgumentVector(testInstance *testing.T) {
	testCases := []struct {
		name                   string
		commandArguments       []string
		configuration          *runcommand.CommandConfiguration
		expectedArgumentVector []string
	}{
		{
			name:                   "argv_arguments_stay_literal",
			commandArguments:       []string{"--", testExecutableNameConstant, "-density", "300", "in put.pdf"},
			expectedArgumentVector: []string{testExecutableNameConstant, "-density", "300", "in put.pdf"},
		},
		{
			name:                   "single_argument_parsed_as_command_line",
			commandArguments:       []string{`convert -density 300 "in put.pdf" out.png`},
			expectedArgumentVector: []string{testExecutableNameConstant, "-density", "300", "in put.pdf", "out.png"},
		},
		{
			name: "substitution_flags_resolve_placeholders",
			commandArguments: []string{
				"--substitute", "input=in.pdf",
				"--substitute", "output=out.png",
				"--", testExecutableNameConstant, "${input}", "${output}",
			},
			expectedArgumentVector: []string{testExecutableNameConstant, "in.pdf", "out.png"},
		},
		{
			name:             "configured_substitutions_apply_without_flags",
			commandArguments: []string{"--", testExecutableNameConstant, "${input}"},
			configuration: &runcommand.CommandConfiguration{
				Substitutions: map[string]string{"input": "configured.pdf"},
			},
			expectedArgumentVector: []string{testExecutableNameConstant, "configured.pdf"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			launcher := &recordingProcessLauncher{standardOutputText: testStandardOutputTextConstant}

			capturedOutput, executionError := executeRunCommand(testInstance, launcher, testCase.configuration, testCase.commandArguments)
			require.NoError(testInstance, executionError)

			require.Len(testInstance, launcher.launchSpecifications, 1)
			require.Equal(testInstance, testCase.expectedArgumentVector, launcher.launchSpecifications[0].ArgumentVector)
			require.Equal(testInstance, testStandardOutputTextConstant, capturedOutput)
		})
	}
}

func TestRunCommandExitPolicies(testInstance *testing.T) {
	testCases := []struct {
		name             string
		commandArguments []string
		exitValue        int
		expectError      bool
	}{
		{
			name:             "default_policy_rejects_nonzero",
			commandArguments: []string{"--", testExecutableNameConstant},
			exitValue:        1,
			expectError:      true,
		},
		{
			name:             "exit_codes_flag_extends_acceptance",
			commandArguments: []string{"--exit-codes", "0", "--exit-codes", "1", "--", testExecutableNameConstant},
			exitValue:        1,
			expectError:      false,
		},
		{
			name:             "any_exit_code_accepts_everything",
			commandArguments: []string{"--any-exit-code", "--", testExecutableNameConstant},
			exitValue:        42,
			expectError:      false,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			launcher := &recordingProcessLauncher{exitValue: testCase.exitValue}

			_, executionError := executeRunCommand(testInstance, launcher, nil, testCase.commandArguments)

			if testCase.expectError {
				exitFailure := execute.ExitValueError{}
				require.ErrorAs(testInstance, executionError, &exitFailure)
				require.Equal(testInstance, testCase.exitValue, exitFailure.ExitValue)
				return
			}
			require.NoError(testInstance, executionError)
		})
	}
}

func TestRunCommandEnvironmentAndWorkingDirectory(testInstance *testing.T) {
	launcher := &recordingProcessLauncher{}

	_, executionError := executeRunCommand(testInstance, launcher, nil, []string{
		"--workdir", "/tmp/project",
		"--env", "LC_ALL=C",
		"--", testExecutableNameConstant,
	})
	require.NoError(testInstance, executionError)

	require.Len(testInstance, launcher.launchSpecifications, 1)
	specification := launcher.launchSpecifications[0]
	require.Equal(testInstance, "/tmp/project", specification.WorkingDirectory)
	require.Equal(testInstance, map[string]string{"LC_ALL": "C"}, specification.EnvironmentVariables)
}

func TestRunCommandBackgroundExecution(testInstance *testing.T) {
	launcher := &recordingProcessLauncher{standardOutputText: testStandardOutputTextConstant}

	capturedOutput, executionError := executeRunCommand(testInstance, launcher, nil, []string{
		"--background", "--", testExecutableNameConstant,
	})
	require.NoError(testInstance, executionError)
	require.Len(testInstance, launcher.launchSpecifications, 1)
	require.Equal(testInstance, testStandardOutputTextConstant, capturedOutput)
}

func TestRunCommandValidation(testInstance *testing.T) {
	testCases := []struct {
		name             string
		commandArguments []string
		errorFragment    string
	}{
		{
			name:             "command_required",
			commandArguments: []string{},
			errorFragment:    "command required",
		},
		{
			name:             "invalid_timeout",
			commandArguments: []string{"--timeout", "soon", "--", testExecutableNameConstant},
			errorFragment:    "invalid timeout",
		},
		{
			name:             "invalid_environment_assignment",
			commandArguments: []string{"--env", "MALFORMED", "--", testExecutableNameConstant},
			errorFragment:    "invalid environment assignment",
		},
		{
			name:             "unbalanced_command_line",
			commandArguments: []string{`convert "in.pdf`},
			errorFragment:    "unable to build command line",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			launcher := &recordingProcessLauncher{}

			_, executionError := executeRunCommand(testInstance, launcher, nil, testCase.commandArguments)
			require.Error(testInstance, executionError)
			require.Contains(testInstance, executionError.Error(), testCase.errorFragment)
			require.Empty(testInstance, launcher.launchSpecifications)
		})
	}
}

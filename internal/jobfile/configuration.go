// Package jobfile loads declarative job definitions from YAML or JSON files
// and resolves them into executable command lines with execution options.
package jobfile

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/temirov/runcmd/internal/cmdline"
	"github.com/temirov/runcmd/internal/execute"
)

const (
	definitionLoadErrorTemplateConstant    = "failed to load job definition: %w"
	definitionParseErrorTemplateConstant   = "failed to parse job definition: %w"
	definitionTimeoutErrorTemplateConstant = "invalid job timeout: %w"
	definitionPathRequiredMessageConstant  = "job definition path must be provided"
	definitionExecutableRequiredMessage    = "job definition must name an executable"
	definitionExitCodeConflictMessage      = "job definition must not combine accepted exit codes with any_exit_code"
)

// Definition describes one external command invocation loaded from a job file.
type Definition struct {
	Executable        string            `yaml:"executable" json:"executable"`
	Arguments         string            `yaml:"arguments" json:"arguments"`
	Substitutions     map[string]any    `yaml:"substitutions" json:"substitutions"`
	WorkingDirectory  string            `yaml:"working_directory" json:"working_directory"`
	Environment       map[string]string `yaml:"environment" json:"environment"`
	Timeout           string            `yaml:"timeout" json:"timeout"`
	AcceptedExitCodes []int             `yaml:"accepted_exit_codes" json:"accepted_exit_codes"`
	AnyExitCode       bool              `yaml:"any_exit_code" json:"any_exit_code"`
	Background        bool              `yaml:"background" json:"background"`
}

// Load reads the job definition from disk and performs basic validation. A
// definition nested under a top-level "job" key is accepted as well.
func Load(filePath string) (Definition, error) {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return Definition{}, errors.New(definitionPathRequiredMessageConstant)
	}

	contentBytes, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		return Definition{}, fmt.Errorf(definitionLoadErrorTemplateConstant, readError)
	}

	var definition Definition
	if unmarshalError := yaml.Unmarshal(contentBytes, &definition); unmarshalError != nil {
		return Definition{}, fmt.Errorf(definitionParseErrorTemplateConstant, unmarshalError)
	}

	if len(strings.TrimSpace(definition.Executable)) == 0 {
		var wrapper struct {
			Job Definition `yaml:"job" json:"job"`
		}
		if nestedError := yaml.Unmarshal(contentBytes, &wrapper); nestedError == nil {
			definition = wrapper.Job
		}
	}

	if validationError := definition.Validate(); validationError != nil {
		return Definition{}, validationError
	}

	return definition, nil
}

// Validate checks the definition for structural mistakes.
func (definition Definition) Validate() error {
	if len(strings.TrimSpace(definition.Executable)) == 0 {
		return errors.New(definitionExecutableRequiredMessage)
	}

	if definition.AnyExitCode && len(definition.AcceptedExitCodes) > 0 {
		return errors.New(definitionExitCodeConflictMessage)
	}

	if _, timeoutError := definition.ParseTimeout(); timeoutError != nil {
		return timeoutError
	}

	return nil
}

// ParseTimeout converts the textual timeout into a duration. An absent timeout
// yields zero, which disables the watchdog.
func (definition Definition) ParseTimeout() (time.Duration, error) {
	trimmedTimeout := strings.TrimSpace(definition.Timeout)
	if len(trimmedTimeout) == 0 {
		return 0, nil
	}

	parsedTimeout, parseError := time.ParseDuration(trimmedTimeout)
	if parseError != nil {
		return 0, fmt.Errorf(definitionTimeoutErrorTemplateConstant, parseError)
	}

	return parsedTimeout, nil
}

// CommandLine builds the command line described by the definition, including
// the substitution map applied at resolution time.
func (definition Definition) CommandLine() (*cmdline.CommandLine, error) {
	commandLine, constructionError := cmdline.NewCommandLine(definition.Executable)
	if constructionError != nil {
		return nil, constructionError
	}

	if argumentsError := commandLine.AddArguments(definition.Arguments); argumentsError != nil {
		return nil, argumentsError
	}

	if len(definition.Substitutions) > 0 {
		commandLine.SetSubstitutionMap(definition.Substitutions)
	}

	return commandLine, nil
}

// ExitPolicy derives the exit-value acceptance policy from the definition.
func (definition Definition) ExitPolicy() execute.ExitPolicy {
	switch {
	case definition.AnyExitCode:
		return execute.AnyExitValue()
	case len(definition.AcceptedExitCodes) > 0:
		return execute.ExitValues(definition.AcceptedExitCodes...)
	default:
		return execute.DefaultExitPolicy()
	}
}

// ExecutorOptions converts the definition into executor options.
func (definition Definition) ExecutorOptions() ([]execute.ExecutorOption, error) {
	parsedTimeout, timeoutError := definition.ParseTimeout()
	if timeoutError != nil {
		return nil, timeoutError
	}

	executorOptions := []execute.ExecutorOption{execute.WithExitPolicy(definition.ExitPolicy())}

	if len(strings.TrimSpace(definition.WorkingDirectory)) > 0 {
		executorOptions = append(executorOptions, execute.WithWorkingDirectory(definition.WorkingDirectory))
	}

	if len(definition.Environment) > 0 {
		executorOptions = append(executorOptions, execute.WithEnvironment(definition.Environment))
	}

	if parsedTimeout > 0 {
		executorOptions = append(executorOptions, execute.WithWatchdogTimeout(parsedTimeout))
	}

	return executorOptions, nil
}

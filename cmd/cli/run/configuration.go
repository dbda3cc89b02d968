package run

import "strings"

const (
	exitCodesConfigurationKeyConstant   = "exit_codes"
	anyExitCodeConfigurationKeyConstant = "any_exit_code"
	backgroundConfigurationKeyConstant  = "background"
	strictConfigurationKeyConstant      = "strict"
	traceConfigurationKeyConstant       = "trace"
	configurationKeySeparatorConstant   = "."
)

// CommandConfiguration captures configuration values for the run command.
type CommandConfiguration struct {
	WorkingDirectory string            `mapstructure:"workdir"`
	Timeout          string            `mapstructure:"timeout"`
	ExitCodes        []int             `mapstructure:"exit_codes"`
	AnyExitCode      bool              `mapstructure:"any_exit_code"`
	Background       bool              `mapstructure:"background"`
	Strict           bool              `mapstructure:"strict"`
	Trace            bool              `mapstructure:"trace"`
	Environment      map[string]string `mapstructure:"environment"`
	Substitutions    map[string]string `mapstructure:"substitutions"`
}

// DefaultCommandConfiguration provides default run command settings.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		ExitCodes: []int{0},
	}
}

// Sanitize normalizes configuration values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.WorkingDirectory = strings.TrimSpace(configuration.WorkingDirectory)
	sanitized.Timeout = strings.TrimSpace(configuration.Timeout)
	if len(sanitized.ExitCodes) == 0 && !sanitized.AnyExitCode {
		sanitized.ExitCodes = append([]int{}, DefaultCommandConfiguration().ExitCodes...)
	}
	return sanitized
}

// DefaultConfigurationValues exposes defaults keyed for the configuration loader.
func DefaultConfigurationValues(configurationPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		prefixedConfigurationKey(configurationPrefix, exitCodesConfigurationKeyConstant):   defaults.ExitCodes,
		prefixedConfigurationKey(configurationPrefix, anyExitCodeConfigurationKeyConstant): defaults.AnyExitCode,
		prefixedConfigurationKey(configurationPrefix, backgroundConfigurationKeyConstant):  defaults.Background,
		prefixedConfigurationKey(configurationPrefix, strictConfigurationKeyConstant):      defaults.Strict,
		prefixedConfigurationKey(configurationPrefix, traceConfigurationKeyConstant):       defaults.Trace,
	}
}

func prefixedConfigurationKey(configurationPrefix string, configurationKey string) string {
	if len(configurationPrefix) == 0 {
		return configurationKey
	}
	return configurationPrefix + configurationKeySeparatorConstant + configurationKey
}

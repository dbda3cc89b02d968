package job

import "strings"

const (
	strictConfigurationKeyConstant    = "strict"
	traceConfigurationKeyConstant     = "trace"
	configurationKeySeparatorConstant = "."
)

// CommandConfiguration captures configuration values for the job command.
type CommandConfiguration struct {
	File   string `mapstructure:"file"`
	Strict bool   `mapstructure:"strict"`
	Trace  bool   `mapstructure:"trace"`
}

// Sanitize normalizes configuration values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.File = strings.TrimSpace(configuration.File)
	return sanitized
}

// DefaultCommandConfiguration provides default job command settings.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{}
}

// DefaultConfigurationValues exposes defaults keyed for the configuration loader.
func DefaultConfigurationValues(configurationPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		prefixedConfigurationKey(configurationPrefix, strictConfigurationKeyConstant): defaults.Strict,
		prefixedConfigurationKey(configurationPrefix, traceConfigurationKeyConstant):  defaults.Trace,
	}
}

func prefixedConfigurationKey(configurationPrefix string, configurationKey string) string {
	if len(configurationPrefix) == 0 {
		return configurationKey
	}
	return configurationPrefix + configurationKeySeparatorConstant + configurationKey
}

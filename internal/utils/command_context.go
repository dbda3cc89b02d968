package utils

import "context"

type commandContextKey string

const (
	configurationFilePathContextKey = commandContextKey("configuration_file_path")
)

// CommandContextAccessor reads and writes values carried through command
// execution contexts, such as the configuration file path resolved during
// application startup.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath returns a context carrying the configuration file path.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, configurationFilePathContextKey, configurationFilePath)
}

// ConfigurationFilePath reports the configuration file path stored in the
// context together with a flag describing whether one was recorded.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	storedPath, pathPresent := executionContext.Value(configurationFilePathContextKey).(string)
	if !pathPresent {
		return "", false
	}
	return storedPath, true
}

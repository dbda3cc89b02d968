// Package utils houses shared infrastructure for the command-line surface.
//
// ConfigurationLoader layers embedded defaults, configuration files, and
// environment variables through Viper; LoggerFactory builds zap loggers for
// the structured and console formats; FlushingWriter keeps process output
// streams responsive; and CommandContextAccessor carries startup metadata
// through command contexts.
package utils

package cmdline

import "fmt"

const (
	invalidCommandLineErrorTemplateConstant = "invalid command line: %s"
	invalidArgumentErrorTemplateConstant    = "invalid argument %q: %s"
)

// InvalidCommandLineError reports a command line that cannot be constructed or parsed.
type InvalidCommandLineError struct {
	Line   string
	Reason string
}

// Error describes the invalid command line condition.
func (invalidCommandLine InvalidCommandLineError) Error() string {
	return fmt.Sprintf(invalidCommandLineErrorTemplateConstant, invalidCommandLine.Reason)
}

// InvalidArgumentError reports an argument whose quoting cannot be normalized.
type InvalidArgumentError struct {
	Value  string
	Reason string
}

// Error describes the invalid argument condition.
func (invalidArgument InvalidArgumentError) Error() string {
	return fmt.Sprintf(invalidArgumentErrorTemplateConstant, invalidArgument.Value, invalidArgument.Reason)
}

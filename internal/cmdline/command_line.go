package cmdline

import (
	"fmt"
	"strings"
)

const (
	blankExecutableReasonConstant   = "executable must not be blank"
	displayTokenSeparatorConstant   = " "
	placeholderPrefixConstant       = "${"
	placeholderSuffixConstant       = "}"
	substitutionValueFormatConstant = "%v"
)

// CommandLine models an executable with ordered, quote-normalized arguments and
// an optional substitution map resolved when the concrete argument vector is built.
type CommandLine struct {
	executable      string
	arguments       []Argument
	substitutionMap map[string]any
}

// NewCommandLine constructs a CommandLine for the provided executable.
func NewCommandLine(executable string) (*CommandLine, error) {
	trimmedExecutable := strings.TrimSpace(executable)
	if len(trimmedExecutable) == 0 {
		return nil, InvalidCommandLineError{Line: executable, Reason: blankExecutableReasonConstant}
	}

	return &CommandLine{executable: trimmedExecutable}, nil
}

// Parse builds a CommandLine from a complete command string. The first token
// becomes the executable and every remaining token is normalized as an argument.
func Parse(commandLineText string) (*CommandLine, error) {
	parsedTokens, tokenizeError := tokenize(commandLineText)
	if tokenizeError != nil {
		return nil, tokenizeError
	}

	commandLine, constructionError := NewCommandLine(parsedTokens[0])
	if constructionError != nil {
		return nil, constructionError
	}

	for _, argumentToken := range parsedTokens[1:] {
		if argumentError := commandLine.AddArgument(argumentToken); argumentError != nil {
			return nil, argumentError
		}
	}

	return commandLine, nil
}

// Executable returns the configured executable.
func (commandLine *CommandLine) Executable() string {
	return commandLine.executable
}

// Arguments returns the normalized arguments in insertion order.
func (commandLine *CommandLine) Arguments() []Argument {
	duplicatedArguments := make([]Argument, len(commandLine.arguments))
	copy(duplicatedArguments, commandLine.arguments)
	return duplicatedArguments
}

// AddArgument normalizes and appends a single argument. An empty value is ignored.
func (commandLine *CommandLine) AddArgument(argumentValue string) error {
	if len(argumentValue) == 0 {
		return nil
	}

	normalizedArgument, normalizationError := newArgument(argumentValue)
	if normalizationError != nil {
		return normalizationError
	}

	commandLine.arguments = append(commandLine.arguments, normalizedArgument)
	return nil
}

// AddOptionalArgument appends the referenced argument when present and is a no-op for nil.
func (commandLine *CommandLine) AddOptionalArgument(argumentValue *string) error {
	if argumentValue == nil {
		return nil
	}
	return commandLine.AddArgument(*argumentValue)
}

// AddArguments tokenizes a whitespace separated argument line honoring quoted
// regions and appends every resulting token. A blank line is a no-op.
func (commandLine *CommandLine) AddArguments(argumentLine string) error {
	if len(strings.TrimSpace(argumentLine)) == 0 {
		return nil
	}

	parsedTokens, tokenizeError := tokenize(argumentLine)
	if tokenizeError != nil {
		return tokenizeError
	}

	for _, argumentToken := range parsedTokens {
		if argumentError := commandLine.AddArgument(argumentToken); argumentError != nil {
			return argumentError
		}
	}

	return nil
}

// AddArgumentValues appends every provided value in order.
func (commandLine *CommandLine) AddArgumentValues(argumentValues []string) error {
	for _, argumentValue := range argumentValues {
		if argumentError := commandLine.AddArgument(argumentValue); argumentError != nil {
			return argumentError
		}
	}
	return nil
}

// SetSubstitutionMap installs the placeholder values applied during resolution.
// The map may be swapped between executions to reuse the same command template.
func (commandLine *CommandLine) SetSubstitutionMap(substitutionValues map[string]any) {
	commandLine.substitutionMap = substitutionValues
}

// Tokens returns the executable followed by every normalized argument token
// with placeholders left unresolved.
func (commandLine *CommandLine) Tokens() []string {
	collectedTokens := make([]string, 0, len(commandLine.arguments)+1)
	collectedTokens = append(collectedTokens, commandLine.executable)
	for _, argument := range commandLine.arguments {
		collectedTokens = append(collectedTokens, argument.Token())
	}
	return collectedTokens
}

// String renders the command line for display and logging purposes.
func (commandLine *CommandLine) String() string {
	return strings.Join(commandLine.Tokens(), displayTokenSeparatorConstant)
}

// Resolve produces the concrete argument vector using the installed substitution map.
func (commandLine *CommandLine) Resolve() []string {
	return commandLine.ResolveWith(commandLine.substitutionMap)
}

// ResolveWith produces the concrete argument vector substituting placeholder
// tokens of the exact form ${name} with the stringified bound value. Unknown
// placeholders pass through literally. Argument vector entries carry the raw
// values without display quoting.
func (commandLine *CommandLine) ResolveWith(substitutionValues map[string]any) []string {
	resolvedTokens := make([]string, 0, len(commandLine.arguments)+1)
	resolvedTokens = append(resolvedTokens, substitutePlaceholder(commandLine.executable, substitutionValues))
	for _, argument := range commandLine.arguments {
		resolvedTokens = append(resolvedTokens, substitutePlaceholder(argument.Value(), substitutionValues))
	}
	return resolvedTokens
}

func substitutePlaceholder(tokenValue string, substitutionValues map[string]any) string {
	if !strings.HasPrefix(tokenValue, placeholderPrefixConstant) || !strings.HasSuffix(tokenValue, placeholderSuffixConstant) {
		return tokenValue
	}

	placeholderName := tokenValue[len(placeholderPrefixConstant) : len(tokenValue)-len(placeholderSuffixConstant)]
	if len(placeholderName) == 0 {
		return tokenValue
	}

	substitutionValue, nameBound := substitutionValues[placeholderName]
	if !nameBound {
		return tokenValue
	}

	return stringifySubstitutionValue(substitutionValue)
}

func stringifySubstitutionValue(substitutionValue any) string {
	switch typedValue := substitutionValue.(type) {
	case string:
		return typedValue
	case fmt.Stringer:
		return typedValue.String()
	default:
		return fmt.Sprintf(substitutionValueFormatConstant, typedValue)
	}
}

package cmdline

import (
	"strings"
	"unicode"
)

const (
	singleQuoteStringConstant    = "'"
	doubleQuoteStringConstant    = `"`
	bothQuoteKindsReasonConstant = "argument must not contain both single and double quotes"
)

// Argument pairs a raw argument value with its quote-normalized display token.
type Argument struct {
	rawValue        string
	normalizedToken string
	quoted          bool
}

// Value returns the argument content without any wrapping quote characters.
func (argument Argument) Value() string {
	return argument.rawValue
}

// Token returns the argument rendered with the quoting required for display and reparsing.
func (argument Argument) Token() string {
	return argument.normalizedToken
}

// Quoted reports whether the normalized token carries wrapping quote characters.
func (argument Argument) Quoted() bool {
	return argument.quoted
}

// newArgument normalizes a single token: one pair of matching outer quotes is
// stripped, an argument mixing both quote kinds is rejected, and quoting is
// reapplied only when the core value contains whitespace or a quote character.
// The normalization is idempotent.
func newArgument(tokenText string) (Argument, error) {
	coreValue := stripMatchingOuterQuotes(tokenText)

	containsSingleQuote := strings.Contains(coreValue, singleQuoteStringConstant)
	containsDoubleQuote := strings.Contains(coreValue, doubleQuoteStringConstant)
	if containsSingleQuote && containsDoubleQuote {
		return Argument{}, InvalidArgumentError{Value: tokenText, Reason: bothQuoteKindsReasonConstant}
	}

	containsWhitespace := strings.IndexFunc(coreValue, unicode.IsSpace) >= 0

	switch {
	case containsDoubleQuote:
		return wrapArgument(coreValue, singleQuoteStringConstant), nil
	case containsSingleQuote:
		return wrapArgument(coreValue, doubleQuoteStringConstant), nil
	case containsWhitespace:
		return wrapArgument(coreValue, doubleQuoteStringConstant), nil
	default:
		return Argument{rawValue: coreValue, normalizedToken: coreValue}, nil
	}
}

func wrapArgument(coreValue string, quoteCharacter string) Argument {
	return Argument{
		rawValue:        coreValue,
		normalizedToken: quoteCharacter + coreValue + quoteCharacter,
		quoted:          true,
	}
}

func stripMatchingOuterQuotes(tokenText string) string {
	if len(tokenText) < 2 {
		return tokenText
	}

	firstCharacter := tokenText[:1]
	if firstCharacter != singleQuoteStringConstant && firstCharacter != doubleQuoteStringConstant {
		return tokenText
	}

	lastCharacter := tokenText[len(tokenText)-1:]
	if firstCharacter != lastCharacter {
		return tokenText
	}

	return tokenText[1 : len(tokenText)-1]
}

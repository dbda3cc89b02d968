package cmdline

import (
	"strings"
	"unicode"
)

const (
	singleQuoteRuneConstant rune = '\''
	doubleQuoteRuneConstant rune = '"'
	noActiveQuoteConstant   rune = 0

	emptyCommandLineReasonConstant = "command line must not be empty"
	unbalancedQuotesReasonConstant = "unbalanced quotes"
)

// tokenize splits a command line into raw tokens honoring single and double quoted regions.
// Whitespace inside a quoted region is preserved as literal token content while the
// delimiting quote characters themselves are stripped.
func tokenize(commandLineText string) ([]string, error) {
	trimmedCommandLine := strings.TrimSpace(commandLineText)
	if len(trimmedCommandLine) == 0 {
		return nil, InvalidCommandLineError{Line: commandLineText, Reason: emptyCommandLineReasonConstant}
	}

	collectedTokens := []string{}
	var currentToken strings.Builder
	activeQuote := noActiveQuoteConstant
	tokenInProgress := false

	for _, character := range trimmedCommandLine {
		switch {
		case activeQuote != noActiveQuoteConstant:
			if character == activeQuote {
				activeQuote = noActiveQuoteConstant
				continue
			}
			currentToken.WriteRune(character)
		case character == singleQuoteRuneConstant || character == doubleQuoteRuneConstant:
			activeQuote = character
			tokenInProgress = true
		case unicode.IsSpace(character):
			if tokenInProgress {
				collectedTokens = append(collectedTokens, currentToken.String())
				currentToken.Reset()
				tokenInProgress = false
			}
		default:
			currentToken.WriteRune(character)
			tokenInProgress = true
		}
	}

	if activeQuote != noActiveQuoteConstant {
		return nil, InvalidCommandLineError{Line: commandLineText, Reason: unbalancedQuotesReasonConstant}
	}

	if tokenInProgress {
		collectedTokens = append(collectedTokens, currentToken.String())
	}

	return collectedTokens, nil
}

package flags

import (
	"fmt"
	"strings"
)

const (
	choiceSeparatorLiteral   = "|"
	choiceUsageEmptyTemplate = "`%s`"
	choiceUsageFullTemplate  = "`%s` %s"
)

// FormatChoiceUsage builds a flag usage string whose placeholder lists the
// accepted values with the default option capitalized.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	placeholder := "<" + strings.Join(highlightDefaultChoice(defaultChoice, choices), choiceSeparatorLiteral) + ">"
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, description)
}

func highlightDefaultChoice(defaultChoice string, choices []string) []string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	highlightedChoices := make([]string, 0, len(choices))
	seenChoices := make(map[string]struct{}, len(choices))

	for _, candidateChoice := range choices {
		trimmedChoice := strings.TrimSpace(candidateChoice)
		if len(trimmedChoice) == 0 {
			continue
		}

		normalizedChoice := strings.ToLower(trimmedChoice)
		if _, alreadySeen := seenChoices[normalizedChoice]; alreadySeen {
			continue
		}
		seenChoices[normalizedChoice] = struct{}{}

		if normalizedChoice == normalizedDefault {
			highlightedChoices = append(highlightedChoices, strings.ToUpper(trimmedChoice))
			continue
		}
		highlightedChoices = append(highlightedChoices, trimmedChoice)
	}

	return highlightedChoices
}

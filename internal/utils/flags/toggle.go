package flags

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/pflag"
)

const (
	toggleTrueCanonicalValue  = "true"
	toggleFalseCanonicalValue = "false"
	toggleParseErrorTemplate  = "invalid toggle value %q"
	toggleEnabledPlaceholder  = "<YES|no>"
	toggleDisabledPlaceholder = "<yes|NO>"
	toggleTypeName            = "bool"
)

var (
	toggleLiteralValues = map[string]bool{
		toggleTrueCanonicalValue:  true,
		"yes":                     true,
		"on":                      true,
		"1":                       true,
		"t":                       true,
		"y":                       true,
		toggleFalseCanonicalValue: false,
		"no":                      false,
		"off":                     false,
		"0":                       false,
		"f":                       false,
		"n":                       false,
	}

	toggleRegistryMutex     sync.RWMutex
	registeredToggleNames   = map[string]struct{}{}
	registeredToggleAliases = map[string]struct{}{}
)

// AddToggleFlag registers a boolean flag that accepts yes/no style literals
// and may appear without an explicit value.
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, defaultValue bool, usage string) {
	if flagSet == nil || len(name) == 0 {
		return
	}

	toggleValue := newToggleFlagValue(defaultValue, target)
	if len(shorthand) > 0 {
		flagSet.VarP(toggleValue, name, shorthand, usage)
	} else {
		flagSet.Var(toggleValue, name, usage)
	}

	registeredFlag := flagSet.Lookup(name)
	if registeredFlag == nil {
		return
	}
	registeredFlag.NoOptDefVal = toggleTrueCanonicalValue
	registeredFlag.Usage = formatToggleUsage(usage, defaultValue)

	toggleRegistryMutex.Lock()
	registeredToggleNames[name] = struct{}{}
	if len(shorthand) > 0 {
		registeredToggleAliases[shorthand] = struct{}{}
	}
	toggleRegistryMutex.Unlock()
}

func formatToggleUsage(description string, defaultValue bool) string {
	placeholder := toggleDisabledPlaceholder
	if defaultValue {
		placeholder = toggleEnabledPlaceholder
	}
	trimmedDescription := strings.TrimSpace(description)
	if len(trimmedDescription) == 0 {
		return fmt.Sprintf("`%s`", placeholder)
	}
	return fmt.Sprintf("`%s` %s", placeholder, trimmedDescription)
}

// NormalizeToggleArguments rewrites space-separated toggle values so
// "--flag value" becomes "--flag=value" before cobra parses the arguments.
// Arguments following a bare "--" separator are preserved untouched.
func NormalizeToggleArguments(arguments []string) []string {
	if len(arguments) == 0 {
		return nil
	}

	normalized := make([]string, 0, len(arguments))
	argumentIndex := 0
	for argumentIndex < len(arguments) {
		currentArgument := arguments[argumentIndex]
		if currentArgument == "--" {
			normalized = append(normalized, arguments[argumentIndex:]...)
			break
		}

		if rewrittenArgument, consumedCount := rewriteToggleArgument(currentArgument, arguments, argumentIndex); consumedCount > 0 {
			normalized = append(normalized, rewrittenArgument)
			argumentIndex += consumedCount
			continue
		}

		normalized = append(normalized, currentArgument)
		argumentIndex++
	}

	return normalized
}

func rewriteToggleArgument(currentArgument string, arguments []string, argumentIndex int) (string, int) {
	flagName, isLongFlag, hasInlineValue := splitFlagArgument(currentArgument)
	if len(flagName) == 0 {
		return "", 0
	}
	if !isRegisteredToggle(flagName, isLongFlag) {
		return "", 0
	}
	if hasInlineValue {
		return currentArgument, 1
	}
	if argumentIndex+1 >= len(arguments) {
		return currentArgument, 1
	}
	followingArgument := arguments[argumentIndex+1]
	if strings.HasPrefix(followingArgument, "-") {
		return currentArgument, 1
	}
	return currentArgument + "=" + followingArgument, 2
}

func splitFlagArgument(argument string) (flagName string, isLongFlag bool, hasInlineValue bool) {
	switch {
	case strings.HasPrefix(argument, "--"):
		isLongFlag = true
		flagName = strings.TrimPrefix(argument, "--")
	case strings.HasPrefix(argument, "-"):
		flagName = strings.TrimPrefix(argument, "-")
	default:
		return "", false, false
	}

	if separatorIndex := strings.Index(flagName, "="); separatorIndex >= 0 {
		flagName = flagName[:separatorIndex]
		hasInlineValue = true
	}
	if !isLongFlag && len(flagName) != 1 {
		return "", false, false
	}
	return flagName, isLongFlag, hasInlineValue
}

func isRegisteredToggle(flagName string, isLongFlag bool) bool {
	toggleRegistryMutex.RLock()
	defer toggleRegistryMutex.RUnlock()
	if isLongFlag {
		_, exists := registeredToggleNames[flagName]
		return exists
	}
	_, exists := registeredToggleAliases[flagName]
	return exists
}

type toggleFlagValue struct {
	currentValue bool
	target       *bool
}

func newToggleFlagValue(defaultValue bool, target *bool) *toggleFlagValue {
	if target != nil {
		*target = defaultValue
	}
	return &toggleFlagValue{currentValue: defaultValue, target: target}
}

func (value *toggleFlagValue) Set(rawValue string) error {
	trimmedValue := strings.TrimSpace(rawValue)
	if len(trimmedValue) == 0 {
		trimmedValue = toggleTrueCanonicalValue
	}

	parsedValue, literalKnown := toggleLiteralValues[strings.ToLower(trimmedValue)]
	if !literalKnown {
		return fmt.Errorf(toggleParseErrorTemplate, rawValue)
	}

	value.currentValue = parsedValue
	if value.target != nil {
		*value.target = parsedValue
	}
	return nil
}

func (value *toggleFlagValue) String() string {
	if value == nil || !value.currentValue {
		return toggleFalseCanonicalValue
	}
	return toggleTrueCanonicalValue
}

func (value *toggleFlagValue) Type() string {
	return toggleTypeName
}

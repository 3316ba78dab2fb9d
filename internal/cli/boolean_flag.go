package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	booleanFlagTypeName       = "bool"
	booleanFlagTrueLiteral    = "true"
	booleanFlagAcceptedValues = "true, false, yes, no, on, off, 1, 0"
	errorBooleanFlagFormat    = "invalid boolean value %q for --%s; accepted values: %s"
)

// parseBooleanLiteral accepts strconv.ParseBool literals plus yes/no and on/off.
func parseBooleanLiteral(input string) (bool, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	switch normalized {
	case "":
		return true, true
	case "yes", "y", "on":
		return true, true
	case "no", "n", "off":
		return false, true
	}
	parsed, err := strconv.ParseBool(normalized)
	if err != nil {
		return false, false
	}
	return parsed, true
}

// booleanFlagValue is a pflag.Value whose type name keeps cobra treating it as a switch.
type booleanFlagValue struct {
	target  *bool
	flagKey string
}

func (value *booleanFlagValue) Set(input string) error {
	parsed, ok := parseBooleanLiteral(input)
	if !ok {
		return fmt.Errorf(errorBooleanFlagFormat, input, value.flagKey, booleanFlagAcceptedValues)
	}
	*value.target = parsed
	return nil
}

func (value *booleanFlagValue) String() string {
	if value == nil || value.target == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*value.target)
}

func (value *booleanFlagValue) Type() string {
	return booleanFlagTypeName
}

// registerBooleanFlag defines a switch that also accepts an explicit value, as in --files=no or --files no.
func registerBooleanFlag(flagSet *pflag.FlagSet, target *bool, name string, defaultValue bool, usage string) {
	*target = defaultValue
	flagSet.Var(&booleanFlagValue{target: target, flagKey: name}, name, usage)
	flag := flagSet.Lookup(name)
	flag.DefValue = strconv.FormatBool(defaultValue)
	flag.NoOptDefVal = booleanFlagTrueLiteral
}

// normalizeBooleanFlagArguments joins "--flag value" into "--flag=value" for
// switches registered with registerBooleanFlag when value is a boolean literal.
func normalizeBooleanFlagArguments(command *cobra.Command, arguments []string) []string {
	switches := map[string]struct{}{}
	collectBooleanFlagNames(command, switches)
	if len(switches) == 0 {
		return arguments
	}
	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		argument := arguments[index]
		if argument == "--" {
			normalized = append(normalized, arguments[index:]...)
			break
		}
		name, isLongFlag := strings.CutPrefix(argument, "--")
		if isLongFlag && !strings.Contains(name, "=") && index+1 < len(arguments) {
			if _, isSwitch := switches[name]; isSwitch {
				next := arguments[index+1]
				if _, isLiteral := parseBooleanLiteral(next); isLiteral && next != "" && !strings.HasPrefix(next, "-") {
					normalized = append(normalized, argument+"="+next)
					index++
					continue
				}
			}
		}
		normalized = append(normalized, argument)
	}
	return normalized
}

func collectBooleanFlagNames(command *cobra.Command, target map[string]struct{}) {
	visit := func(flag *pflag.Flag) {
		if flag.Value.Type() == booleanFlagTypeName {
			target[flag.Name] = struct{}{}
		}
	}
	command.PersistentFlags().VisitAll(visit)
	command.Flags().VisitAll(visit)
	for _, child := range command.Commands() {
		collectBooleanFlagNames(child, target)
	}
}

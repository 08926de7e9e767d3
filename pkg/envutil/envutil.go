// Package envutil reads and validates configuration from environment variables.
package envutil

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/github/gh-pipelines/pkg/console"
	"github.com/github/gh-pipelines/pkg/logger"
)

// GetIntFromEnv reads an integer from envVar and checks it against
// [minValue, maxValue]. Unset, unparsable, or out-of-range values yield
// defaultValue; the latter two also print a warning to stderr.
func GetIntFromEnv(envVar string, defaultValue, minValue, maxValue int, log *logger.Logger) int {
	envValue := os.Getenv(envVar)
	if envValue == "" {
		return defaultValue
	}

	val, err := strconv.Atoi(envValue)
	if err != nil {
		fmt.Fprintln(os.Stderr, console.FormatWarningMessage(
			fmt.Sprintf("Invalid %s value '%s' (must be a number), using default %d", envVar, envValue, defaultValue),
		))
		return defaultValue
	}

	if val < minValue || val > maxValue {
		fmt.Fprintln(os.Stderr, console.FormatWarningMessage(
			fmt.Sprintf("%s value %d is out of bounds (must be %d-%d), using default %d", envVar, val, minValue, maxValue, defaultValue),
		))
		return defaultValue
	}

	if log != nil {
		log.Printf("Using %s=%d", envVar, val)
	}
	return val
}

// GetBoolFromEnv reads a boolean from envVar. It returns ok=false when the
// variable is unset or cannot be parsed, so callers can tell an explicit
// setting from a default.
func GetBoolFromEnv(envVar string, log *logger.Logger) (value bool, ok bool) {
	envValue := strings.TrimSpace(os.Getenv(envVar))
	if envValue == "" {
		return false, false
	}

	val, err := strconv.ParseBool(envValue)
	if err != nil {
		fmt.Fprintln(os.Stderr, console.FormatWarningMessage(
			fmt.Sprintf("Invalid %s value '%s' (must be true or false), ignoring", envVar, envValue),
		))
		return false, false
	}

	if log != nil {
		log.Printf("Using %s=%t", envVar, val)
	}
	return val, true
}

package logging

import (
	"fmt"
	"os"
)

// DebugEnv is the environment variable that turns on debug tracing.
const DebugEnv = "TA_DEBUG"

// DebugEnabled returns true if TA_DEBUG is set to a non-empty value.
func DebugEnabled() bool {
	return os.Getenv(DebugEnv) != ""
}

// Debugf writes a formatted trace line to stderr when debug mode is on.
func Debugf(format string, args ...any) {
	if DebugEnabled() {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// Debugln writes a trace line to stderr when debug mode is on.
func Debugln(args ...any) {
	if DebugEnabled() {
		fmt.Fprintln(os.Stderr, args...)
	}
}

package logger

import (
	"github.com/fatih/color" // fatih/color provides the colored console output
)

// Colorized printing functions for the different log levels. These are
// package-level variables holding functions that behave like fmt.Printf,
// but with text colored appropriately for the level.

// Info logs informational messages in green.
// Green is used for success or normal progress output.
var Info = color.New(color.FgGreen).PrintfFunc()

// Warn logs warning messages in bright magenta.
// Magenta stands out, signaling caution without being too alarming.
var Warn = color.New(color.FgHiMagenta).PrintfFunc()

// Error logs error messages in red to draw immediate attention.
var Error = color.New(color.FgRed).PrintfFunc()

// Plain prints uncolored output, used for plan listings and prompts where
// color would distract from the content.
var Plain = color.New().PrintfFunc()

// Debug logs debug messages in cyan if enabled, otherwise is a no-op.
// It is assigned dynamically during Init based on the debug flag, and
// defaults to a no-op so library code is safe before Init runs.
var Debug = func(format string, a ...any) {}

// Init initializes the logger package, enabling or disabling debug logging.
// When disabled, Debug is a no-op function that silently ignores debug logs.
func Init(enableDebug bool) {
	if enableDebug {
		Debug = color.New(color.FgCyan).PrintfFunc()
	} else {
		Debug = func(format string, a ...any) {}
	}
}

package main

import (
	"os"

	"github.com/opal-lang/interact/core/nodetree/formatter"
)

// Re-export color constants from formatter package for convenience
const (
	ColorReset  = formatter.ColorReset
	ColorRed    = formatter.ColorRed
	ColorGreen  = formatter.ColorGreen
	ColorYellow = formatter.ColorYellow
	ColorCyan   = formatter.ColorCyan
)

// Colorize wraps text in ANSI color codes if color is enabled
// This is a convenience wrapper around formatter.Colorize
func Colorize(text, color string, useColor bool) string {
	return formatter.Colorize(text, color, useColor)
}

// ShouldUseColor determines if color output should be used.
// The --no-color flag wins, then the config mode; "auto" respects the
// NO_COLOR environment variable and whether stdout is a terminal.
func ShouldUseColor(noColorFlag bool, mode string) bool {
	if noColorFlag {
		return false
	}
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isTerminal(os.Stdout)
}

func isTerminal(f *os.File) bool {
	fileInfo, err := f.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

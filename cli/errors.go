package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/opal-lang/interact/core/assist"
	"github.com/opal-lang/interact/runtime/interact"
	"github.com/opal-lang/interact/runtime/prompt"
)

// CLIError represents a formatted CLI error with context
type CLIError struct {
	Type    string // "config", "snapshot", "watch"
	Message string
	Details string // Additional context
	Hint    string // How to fix it
}

// Error implements the error interface
func (e *CLIError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Details != "" {
		b.WriteString("\n")
		b.WriteString(e.Details)
	}
	if e.Hint != "" {
		b.WriteString("\n")
		b.WriteString(e.Hint)
	}
	return b.String()
}

// EvalError is a failed evaluation of one expression.
type EvalError struct {
	Expr   string
	Assist assist.Assist[string]
	Err    error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Expr, e.Err)
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

// FormatError formats an error for CLI output with colors
func FormatError(w io.Writer, err error, useColor bool) {
	if err == nil {
		return
	}

	var (
		evalErr *EvalError
		cliErr  *CLIError
	)
	switch {
	case errors.As(err, &evalErr):
		formatEvalError(w, evalErr, useColor)
	case errors.As(err, &cliErr):
		formatCLIError(w, cliErr, useColor)
	default:
		_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Error: ", ColorRed, useColor), err.Error())
	}
}

// formatEvalError shows the error kind, the expression highlighted by how
// far it was understood, and what could have come next.
func formatEvalError(w io.Writer, err *EvalError, useColor bool) {
	kind := err.Err.Error()
	if k, ok := interact.KindOf(err.Err); ok {
		kind = k.String()
	}
	_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Error: ", ColorRed, useColor), kind)
	_, _ = fmt.Fprintf(w, "  %s\n", prompt.Highlight(err.Expr, err.Assist, useColor))

	var ce *interact.ClimbError
	if errors.As(err.Err, &ce) {
		if ce.Cause != nil {
			_, _ = fmt.Fprintf(w, "  %s\n", ce.Cause)
		}
		if len(ce.Suggestions) > 0 {
			_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Hint: ", ColorYellow, useColor),
				"did you mean "+strings.Join(ce.Suggestions, ", ")+"?")
		}
	}

	if _, items := err.Assist.Next.IntoPosition(err.Assist.Valid); len(items) > 0 {
		_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Expected: ", ColorCyan, useColor), strings.Join(items, " | "))
	}
}

// formatCLIError formats CLI errors
func formatCLIError(w io.Writer, err *CLIError, useColor bool) {
	_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Error: ", ColorRed, useColor), err.Message)

	if err.Details != "" {
		_, _ = fmt.Fprintf(w, "\n%s\n", err.Details)
	}

	if err.Hint != "" {
		_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Hint: ", ColorYellow, useColor), err.Hint)
	}
}

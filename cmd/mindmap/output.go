package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen)
	infoColor    = color.New(color.FgCyan)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
)

// printSuccess prints a completed action.
func printSuccess(w io.Writer, format string, args ...any) {
	_, _ = successColor.Fprintf(w, "✓ "+format+"\n", args...)
}

// printInfo prints a status line.
func printInfo(w io.Writer, format string, args ...any) {
	_, _ = infoColor.Fprintf(w, format+"\n", args...)
}

// printWarning prints a non-fatal problem.
func printWarning(w io.Writer, format string, args ...any) {
	_, _ = warnColor.Fprint(w, "warning: ")
	_, _ = fmt.Fprintf(w, format+"\n", args...)
}

// printError prints a command failure.
func printError(w io.Writer, err error) {
	_, _ = errorColor.Fprint(w, "error: ")
	_, _ = fmt.Fprintln(w, err)
}

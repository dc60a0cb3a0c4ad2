// Package cmd provides small CLI support utilities shared by every
// disksense64 subcommand: turning an error-returning entry point into a
// standard Cobra Run function, printing warnings and fatal errors
// consistently, and redrawing a single status line during a long dedupe
// pass.
package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Mainify wraps a non-standard Cobra entry point (one returning an error) and
// generates a standard Cobra entry point. It's useful for entry points to be
// able to rely on defer-based cleanup, which doesn't occur if the entry point
// terminates the process directly.
func Mainify(entry func(*cobra.Command, []string) error) func(*cobra.Command, []string) {
	return func(command *cobra.Command, arguments []string) {
		if err := entry(command, arguments); err != nil {
			Fatal(err)
		}
	}
}

// Warning prints a warning message to standard error.
func Warning(message string) {
	fmt.Fprintln(color.Error, color.YellowString("Warning:"), message)
}

// Error prints an error message to standard error.
func Error(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
}

// Fatal prints an error message to standard error and then terminates the
// process with an error exit code.
func Fatal(err error) {
	Error(err)
	os.Exit(1)
}

// statusLineFormat pads/truncates status line content to a fixed width so
// that a carriage return fully overwrites whatever was printed before it.
const statusLineFormat = "\r%-80s"

// StatusLinePrinter provides printing facilities for a dynamically updating
// status line in the console, used by the dedupe command to show progress
// of its find-duplicates pass without scrolling the terminal.
type StatusLinePrinter struct {
	nonEmpty bool
}

// Print prints a message to the status line, overwriting any existing
// content.
func (p *StatusLinePrinter) Print(message string) {
	fmt.Fprintf(color.Output, statusLineFormat, message)
	p.nonEmpty = true
}

// Clear clears any content on the status line and moves the cursor back to
// the beginning of the line.
func (p *StatusLinePrinter) Clear() {
	p.Print("")
	fmt.Fprint(os.Stdout, "\r")
	p.nonEmpty = false
}

// BreakIfNonEmpty prints a newline if the status line currently holds
// content, so that subsequent output starts on a fresh line.
func (p *StatusLinePrinter) BreakIfNonEmpty() {
	if p.nonEmpty {
		fmt.Fprintln(os.Stdout)
		p.nonEmpty = false
	}
}

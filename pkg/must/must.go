// Package must provides best-effort cleanup helpers for operations whose
// errors can only be logged, not meaningfully handled — typically deferred
// closes and removals during error unwinding.
package must

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/GonxKZ/disksense64-sub000/pkg/logging"
)

// Close closes c, logging a warning on failure.
func Close(c io.Closer, logger *logging.Logger) {
	if err := c.Close(); err != nil {
		logger.Warnf("unable to close: %s", err.Error())
	}
}

// OSRemove removes the named file, logging a warning on failure.
func OSRemove(name string, logger *logging.Logger) {
	if err := os.Remove(name); err != nil {
		logger.Warnf("unable to remove '%s': %s", name, err.Error())
	}
}

// IOCopy copies from src to dst, logging a warning on failure.
func IOCopy(dst io.Writer, src io.Reader, logger *logging.Logger) {
	if _, err := io.Copy(dst, src); err != nil {
		logger.Warnf("unable to copy from source to destination: %s", err.Error())
	}
}

// CommandHelp prints a command's help text, logging a warning on failure.
func CommandHelp(c *cobra.Command, logger *logging.Logger) {
	if err := c.Help(); err != nil {
		logger.Warnf("unable to print help: %s", err.Error())
	}
}

// Flush flushes sd, logging a warning on failure.
func Flush(sd interface{ Flush() error }, logger *logging.Logger) {
	if err := sd.Flush(); err != nil {
		logger.Warnf("unable to flush: %s", err.Error())
	}
}

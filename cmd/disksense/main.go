// Command disksense is the command-line front end for the disksense64 core:
// a recursive filesystem scanner, an on-disk LSM index, and a duplicate-file
// deduplicator. The GUI, archive inspectors, and other collaborators listed
// as out of scope in the core design live elsewhere; this binary only drives
// the scan/index/dedupe pipeline.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GonxKZ/disksense64-sub000/pkg/disksense"
)

func rootMain(command *cobra.Command, arguments []string) {
	if rootConfiguration.version {
		fmt.Println(disksense.Version)
		return
	}
	command.Help()
}

var rootCommand = &cobra.Command{
	Use:   "disksense",
	Short: "disksense64 scans, indexes, and deduplicates files on disk",
	Run:   rootMain,
}

var rootConfiguration struct {
	help    bool
	version bool
}

func init() {
	flags := rootCommand.Flags()
	flags.BoolVarP(&rootConfiguration.help, "help", "h", false, "Show help information")
	flags.BoolVarP(&rootConfiguration.version, "version", "V", false, "Show version information")

	// Disable Cobra's command sorting behavior so subcommands appear in
	// registration order (scan, then dedupe, then the reserved stubs).
	cobra.EnableCommandSorting = false

	// Disable Cobra's use of mousetrap. Mousetrap enforces that a Windows
	// binary only be launched from an existing console, which breaks
	// invocation from scripts and other non-interactive launchers.
	cobra.MousetrapHelpText = ""

	rootCommand.AddCommand(
		scanCommand,
		dedupeCommand,
		similarCommand,
		cleanupCommand,
		treemapCommand,
		versionCommand,
	)
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}

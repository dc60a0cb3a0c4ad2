package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// cleanupCommand is reserved for rule-based cleanup (temp files, caches,
// old downloads) layered on top of the index. Scan and dedupe cover the
// core pipeline; cleanup policy is a separate concern not yet designed.
var cleanupCommand = &cobra.Command{
	Use:   "cleanup <directory>",
	Short: "Apply cleanup rules to reclaim disk space (reserved)",
	Args:  cobra.ExactArgs(1),
	Run: func(command *cobra.Command, arguments []string) {
		fmt.Println("cleanup: not yet implemented")
	},
}

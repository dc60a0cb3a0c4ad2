package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// similarCommand is reserved for perceptual-similarity grouping (images by
// PerceptualHash, audio by AudioDuration) once that analysis lands. The
// model already carries the fields; nothing populates or consumes them yet.
var similarCommand = &cobra.Command{
	Use:   "similar <directory>",
	Short: "Find near-duplicate files by perceptual similarity (reserved)",
	Args:  cobra.ExactArgs(1),
	Run: func(command *cobra.Command, arguments []string) {
		fmt.Println("similar: not yet implemented")
	},
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// treemapCommand is reserved for a terminal/GUI treemap visualization of
// index contents. Rendering is out of scope for this binary; the index's
// GetByPath/GetByVolume queries already provide what a renderer would need.
var treemapCommand = &cobra.Command{
	Use:   "treemap <directory>",
	Short: "Render a treemap of disk usage under a directory (reserved)",
	Args:  cobra.ExactArgs(1),
	Run: func(command *cobra.Command, arguments []string) {
		fmt.Println("treemap: not yet implemented")
	},
}

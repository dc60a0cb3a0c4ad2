package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GonxKZ/disksense64-sub000/pkg/disksense"
)

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	Run: func(command *cobra.Command, arguments []string) {
		fmt.Println(disksense.Version)
	},
}

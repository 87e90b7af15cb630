package cli

import (
	"github.com/spf13/cobra"

	"taskline"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("taskline %s\n", taskline.Version)
	},
}

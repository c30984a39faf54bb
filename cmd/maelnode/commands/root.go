package commands

import (
	"github.com/spf13/cobra"
)

// RootCmd is the root command for maelnode
var RootCmd = &cobra.Command{
	Use:              "maelnode",
	Short:            "single-process node for the line-delimited JSON message protocol",
	TraverseChildren: true,
}

func init() {
	RootCmd.AddCommand(
		NewRunCmd(),
		VersionCmd,
	)
}

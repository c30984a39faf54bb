package main

import (
	"os"

	"github.com/ryandielhenn/maelnode/cmd/maelnode/commands"
)

func main() {
	if err := commands.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

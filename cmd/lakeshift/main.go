package main

import (
	"os"

	"github.com/lakeshift/lakeshift/internal/commands"
)

func main() {
	rootCmd := commands.RootCmd()

	rootCmd.AddCommand(commands.ImportCmd())
	rootCmd.AddCommand(commands.ConvertCmd())
	rootCmd.AddCommand(commands.DeployCmd())
	rootCmd.AddCommand(commands.StatusCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

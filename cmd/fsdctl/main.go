package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fsdctl",
	Short: "fsdctl - Figma to Jira and Confluence specification generator",
	Long: `fsdctl turns a Figma component into a Jira story with sub-tasks and a
Confluence functional specification, without running the server.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

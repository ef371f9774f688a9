package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Build variables set by ldflags
var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "runtime-calculator",
		Short: "Estimate the runtime complexity of a code snippet",
		Long: `Runtime Calculator serves a single page where a snippet of code can be
submitted and a big-O verdict with its reasoning is shown.

Configuration is read from the environment and an optional .env file.`,
		Version:      version + " (" + commit + ")",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newMigrateCommand())
	rootCmd.AddCommand(newAnalyzeCommand())

	return rootCmd
}

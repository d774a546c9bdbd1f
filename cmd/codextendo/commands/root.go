package commands

import (
	"github.com/spf13/cobra"
)

var (
	// dbPath is the path to the SQLite generation history database.
	dbPath string

	// verbose enables debug logging.
	verbose bool
)

// rootCmd is the base command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "codextendo",
	Short: "Codextendo session summarization helpers",
	Long: `Codextendo distills Codex CLI session transcripts into durable summaries.

Use it to summarize a single session, refresh the summaries for every
session whose transcript changed, inspect past generations, or serve the
same operations to coding agents over MCP.`,

	// Errors surface once as "Error: ..." on stderr without a usage
	// dump, matching the tool's scripted callers.
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags.
	rootCmd.PersistentFlags().StringVar(
		&dbPath, "db", "",
		"Path to the generation history database "+
			"(default: ~/.codextendo/history.db)",
	)
	rootCmd.PersistentFlags().BoolVar(
		&verbose, "verbose", false,
		"Enable debug logging",
	)

	// Add subcommands.
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
}

package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BranchManager69/codextendo/internal/history"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history <session-id>",
	Short: "List recorded generations for a session",
	Long: `List past summary generations for a session, newest first.

Unlike the flat summary artifacts, which are overwritten on every run,
the generation history database keeps one row per summarizer run.`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit",
		history.DefaultListLimit,
		"Maximum number of generations to list")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false,
		"Output as JSON")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	sessionID := args[0]

	store, err := openHistoryStore(newLogger())
	if err != nil {
		return err
	}
	defer store.Close()

	gens, err := store.ListBySession(ctx, sessionID, historyLimit)
	if err != nil {
		return err
	}

	if historyJSON {
		return outputJSON(gens)
	}

	if len(gens) == 0 {
		fmt.Printf("No generations recorded for %s.\n", sessionID)
		return nil
	}

	for i, gen := range gens {
		if i > 0 {
			fmt.Println()
		}
		fmt.Print(formatGeneration(gen))
	}

	return nil
}

// formatGeneration renders one recorded generation for display.
func formatGeneration(gen history.Generation) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s · %s\n", gen.GeneratedAt, gen.Model))
	if gen.Label != "" {
		sb.WriteString(fmt.Sprintf("  Label: %s\n", gen.Label))
	}

	sb.WriteString(fmt.Sprintf("  Tokens kept: %d", gen.KeptTokens))
	if gen.Truncated {
		sb.WriteString(" (truncated)")
	}
	sb.WriteString("\n")

	if line := firstLine(gen.Summary); line != "" {
		sb.WriteString("  " + line + "\n")
	}

	return sb.String()
}

// firstLine returns the first non-empty line of text.
func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BranchManager69/codextendo/internal/summary"
)

var (
	summarizePath       string
	summarizeLabel      string
	summarizeModel      string
	summarizeMaxTokens  int
	summarizeSummaryDir string
	summarizeLabelFile  string
	summarizeHTML       bool
	summarizeJSON       bool
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize a single Codex session",
	Long: `Summarize one session transcript and write its artifacts.

The transcript is normalized into text segments, trimmed to the token
budget, and summarized by the configured model. The summary is written
as JSON and Markdown, appended to the session's history file, and
recorded in the generation history database.`,
	RunE: runSummarize,
}

func init() {
	defaults := summary.DefaultConfig()

	summarizeCmd.Flags().StringVar(&summarizePath, "path", "",
		"Path to the session transcript (required)")
	summarizeCmd.Flags().StringVar(&summarizeLabel, "label", "",
		"Label recorded with the summary")
	summarizeCmd.Flags().StringVar(&summarizeModel, "model",
		defaults.Model, "Model used for summarization")
	summarizeCmd.Flags().IntVar(&summarizeMaxTokens, "max-tokens",
		defaults.MaxTokens,
		"Transcript token budget (zero or negative disables trimming)")
	summarizeCmd.Flags().StringVar(&summarizeSummaryDir, "summary-dir",
		defaults.SummaryDir, "Directory summaries are written to")
	summarizeCmd.Flags().StringVar(&summarizeLabelFile, "label-file",
		defaults.LabelFile,
		"JSON map of transcript paths to labels")
	summarizeCmd.Flags().BoolVar(&summarizeHTML, "html", false,
		"Additionally render the summary to HTML")
	summarizeCmd.Flags().BoolVar(&summarizeJSON, "json", false,
		"Print the summary record as JSON")

	summarizeCmd.MarkFlagRequired("path")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := newLogger()

	cfg := summary.DefaultConfig()
	cfg.Model = summarizeModel
	cfg.MaxTokens = summarizeMaxTokens
	cfg.SummaryDir = summarizeSummaryDir
	cfg.LabelFile = summarizeLabelFile
	cfg.WriteHTML = summarizeHTML

	svc, cleanup := newService(cfg, log)
	defer cleanup()

	res, err := svc.SummarizeSession(ctx, summarizePath, summarizeLabel)
	if err != nil {
		return err
	}

	if summarizeJSON {
		return outputJSON(res.Record)
	}

	fmt.Printf("Summary saved -> %s\n", res.JSONPath)
	fmt.Printf("Markdown saved -> %s\n", res.MarkdownPath)
	if res.Record.Truncated {
		fmt.Println("(Transcript truncated to stay within the token budget.)")
	}
	if res.HistoryPath != "" {
		fmt.Printf("History updated -> %s\n", res.HistoryPath)
	}
	if res.HTMLPath != "" {
		fmt.Printf("HTML saved -> %s\n", res.HTMLPath)
	}

	return nil
}

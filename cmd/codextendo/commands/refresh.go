package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/BranchManager69/codextendo/internal/summary"
)

var (
	refreshSessionsDir string
	refreshSummaryDir  string
	refreshIndex       string
	refreshModel       string
	refreshMaxTokens   int
	refreshLimit       int
	refreshForce       bool
	refreshConcurrency int
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh summaries for all sessions",
	Long: `Re-summarize every session whose transcript changed.

Each transcript under the sessions directory is re-read and compared
against the cache index by content digest and latest timestamp; only
unseen or changed sessions are summarized. One failed session does not
abort the pass, and the updated index is committed in a single write at
the end.`,
	RunE: runRefresh,
}

func init() {
	defaults := summary.DefaultConfig()

	refreshCmd.Flags().StringVar(&refreshSessionsDir, "sessions-dir",
		defaults.SessionsDir,
		"Directory searched recursively for session transcripts")
	refreshCmd.Flags().StringVar(&refreshSummaryDir, "summary-dir",
		defaults.SummaryDir, "Directory summaries are written to")
	refreshCmd.Flags().StringVar(&refreshIndex, "index",
		defaults.IndexPath, "Path to the cache index")
	refreshCmd.Flags().StringVar(&refreshModel, "model",
		defaults.Model, "Model used for summarization")
	refreshCmd.Flags().IntVar(&refreshMaxTokens, "max-tokens",
		defaults.MaxTokens,
		"Transcript token budget (zero or negative disables trimming)")
	refreshCmd.Flags().IntVar(&refreshLimit, "limit", 0,
		"Only process the newest N sessions")
	refreshCmd.Flags().BoolVar(&refreshForce, "force", false,
		"Rebuild all summaries regardless of cache state")
	refreshCmd.Flags().IntVar(&refreshConcurrency, "concurrency",
		defaults.Concurrency,
		"Number of sessions summarized at once")
}

func runRefresh(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg := summary.DefaultConfig()
	cfg.SessionsDir = refreshSessionsDir
	cfg.SummaryDir = refreshSummaryDir
	cfg.IndexPath = refreshIndex
	cfg.Model = refreshModel
	cfg.MaxTokens = refreshMaxTokens
	cfg.Concurrency = refreshConcurrency

	svc, cleanup := newService(cfg, log)
	defer cleanup()

	// An interrupt stops dispatching new sessions; completed work is
	// still committed to the index before the command returns.
	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	result, err := svc.Refresh(ctx, summary.RefreshOptions{
		Limit: refreshLimit,
		Force: refreshForce,
	})
	if result != nil {
		printRefreshResult(result)
	}
	if err != nil {
		return err
	}

	return nil
}

// printRefreshResult reports what a refresh pass accomplished.
func printRefreshResult(result *summary.RefreshResult) {
	if result.UpToDate {
		fmt.Println("All summaries are up to date.")
		return
	}

	for _, sess := range result.Refreshed {
		if sess.HistoryPath != "" {
			fmt.Printf("Refreshed summary for %s -> %s (history → %s)\n",
				sess.Record.SessionID, sess.MarkdownPath,
				sess.HistoryPath,
			)
		} else {
			fmt.Printf("Refreshed summary for %s -> %s\n",
				sess.Record.SessionID, sess.MarkdownPath,
			)
		}
	}

	if result.Failed > 0 {
		fmt.Printf("%d session(s) failed; see warnings above.\n",
			result.Failed,
		)
	}
}

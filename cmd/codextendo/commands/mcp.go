package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/BranchManager69/codextendo/internal/build"
	mcpserver "github.com/BranchManager69/codextendo/internal/mcp"
	"github.com/BranchManager69/codextendo/internal/oai"
	"github.com/BranchManager69/codextendo/internal/summary"
)

var (
	mcpSessionsDir string
	mcpSummaryDir  string
	mcpIndex       string
	mcpLogDir      string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve summarization tools over MCP on stdio",
	Long: `Serve summarization to coding agents over the Model Context Protocol.

The server speaks MCP on stdin/stdout, so all logging goes to stderr
and to a rotating log file instead. It exposes the same operations as
the CLI: summarize_session, refresh_summaries, get_summary, and
list_summaries.`,
	RunE: runMCP,
}

func init() {
	defaults := summary.DefaultConfig()

	mcpCmd.Flags().StringVar(&mcpSessionsDir, "sessions-dir",
		defaults.SessionsDir,
		"Directory searched recursively for session transcripts")
	mcpCmd.Flags().StringVar(&mcpSummaryDir, "summary-dir",
		defaults.SummaryDir, "Directory summaries are written to")
	mcpCmd.Flags().StringVar(&mcpIndex, "index",
		defaults.IndexPath, "Path to the cache index")
	mcpCmd.Flags().StringVar(&mcpLogDir, "log-dir", "",
		"Directory for server log files "+
			"(default: ~/.codextendo/logs)")
}

func runMCP(cmd *cobra.Command, args []string) error {
	log, logCleanup, err := newServerLogger()
	if err != nil {
		return err
	}
	defer logCleanup()

	cfg := summary.DefaultConfig()
	cfg.SessionsDir = mcpSessionsDir
	cfg.SummaryDir = mcpSummaryDir
	cfg.IndexPath = mcpIndex

	client := oai.NewClient(cfg.APIBase, cfg.APIKey, 0)

	serverCfg := mcpserver.Config{
		Summary: cfg,
		Client:  client,
		Logger:  log,
	}

	// History is best effort in server mode too: tools keep working
	// without durable generation records.
	store, err := openHistoryStore(log)
	if err != nil {
		log.Warn("Generation history unavailable", "error", err)
	} else {
		serverCfg.History = store
		defer store.Close()
	}

	srv := mcpserver.NewServer(serverCfg)

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	log.Info("Starting MCP server on stdio",
		"version", build.Version(),
		"sessions_dir", cfg.SessionsDir,
		"summary_dir", cfg.SummaryDir,
	)

	return srv.Run(ctx, &sdkmcp.StdioTransport{})
}

// newServerLogger builds the server logger. Stdout carries the MCP
// protocol, so log records fan out to stderr and to a rotating file
// under the log directory. The returned cleanup flushes and closes the
// file writer.
func newServerLogger() (*slog.Logger, func(), error) {
	logDir := mcpLogDir
	if logDir == "" {
		var err error
		logDir, err = build.DefaultLogDir()
		if err != nil {
			return nil, nil, err
		}
	}

	rotatorCfg := build.DefaultLogRotatorConfig()
	rotatorCfg.LogDir = logDir

	logWriter, err := build.NewRotatingLogWriter(rotatorCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up log file: %w", err)
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	handler := build.NewHandlerSet(
		slog.NewTextHandler(os.Stderr, opts),
		slog.NewTextHandler(logWriter, opts),
	)

	cleanup := func() { _ = logWriter.Close() }

	return slog.New(handler), cleanup, nil
}

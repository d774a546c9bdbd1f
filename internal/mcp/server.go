// Package mcp serves session summarization to coding agents over the
// Model Context Protocol.
package mcp

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/BranchManager69/codextendo/internal/build"
	"github.com/BranchManager69/codextendo/internal/summary"
)

// Config holds configuration for the MCP server.
type Config struct {
	// Summary is the base summarization config. Individual tool calls
	// may override the model and token budget.
	Summary summary.Config

	// Client produces summaries from assembled prompts.
	Client summary.Summarizer

	// History optionally records generations durably. Nil disables
	// recording.
	History summary.GenerationRecorder

	// Logger receives server and summarization logs. Nil falls back to
	// slog.Default().
	Logger *slog.Logger
}

// Server wraps the MCP server with the summarization service.
type Server struct {
	server *mcp.Server
	cfg    Config
	svc    *summary.Service
	log    *slog.Logger
}

// NewServer creates a new MCP server with all summarization tools
// registered.
func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "codextendo",
		Version: build.Version(),
	}, nil)

	s := &Server{
		server: mcpServer,
		cfg:    cfg,
		svc:    newService(cfg, cfg.Summary),
		log:    cfg.Logger.With("component", "mcp"),
	}

	s.registerTools()

	return s
}

// newService builds a summary service for the given summarization
// config, carrying the server's client, history store, and logger.
func newService(cfg Config, summaryCfg summary.Config) *summary.Service {
	var opts []summary.ServiceOption
	if cfg.History != nil {
		opts = append(opts, summary.WithHistory(cfg.History))
	}

	return summary.NewService(summaryCfg, cfg.Client, cfg.Logger, opts...)
}

// serviceFor returns the service for one tool call, rebuilding it when
// the call overrides the model or token budget.
func (s *Server) serviceFor(model string, maxTokens int) *summary.Service {
	if model == "" && maxTokens == 0 {
		return s.svc
	}

	summaryCfg := s.cfg.Summary
	if model != "" {
		summaryCfg.Model = model
	}
	if maxTokens != 0 {
		summaryCfg.MaxTokens = maxTokens
	}

	return newService(s.cfg, summaryCfg)
}

// Run starts the MCP server on the given transport.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.server.Run(ctx, transport)
}

// registerTools registers all summarization tools.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "summarize_session",
		Description: "Summarize one Codex session transcript and " +
			"write its summary artifacts",
	}, s.handleSummarizeSession)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "refresh_summaries",
		Description: "Re-summarize every session whose transcript " +
			"changed since the last refresh",
	}, s.handleRefreshSummaries)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_summary",
		Description: "Get the recorded summary for a session",
	}, s.handleGetSummary)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_summaries",
		Description: "List recorded session summaries, newest first",
	}, s.handleListSummaries)
}

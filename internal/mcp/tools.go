package mcp

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/BranchManager69/codextendo/internal/summary"
)

// defaultListLimit caps list_summaries results when the caller does not
// pass a limit.
const defaultListLimit = 20

// SummarizeSessionArgs are the arguments for the summarize_session tool.
type SummarizeSessionArgs struct {
	// Path is the transcript to summarize.
	Path string `json:"path" jsonschema:"Path to the session transcript (.jsonl)"`

	// Label optionally tags the session in the summary artifacts.
	Label string `json:"label,omitempty" jsonschema:"Optional human-readable label for the session"`

	// Model overrides the configured summarization model.
	Model string `json:"model,omitempty" jsonschema:"Override the summarization model"`

	// MaxTokens overrides the transcript token budget; a negative value
	// disables trimming.
	MaxTokens int `json:"max_tokens,omitempty" jsonschema:"Override the transcript token budget; negative disables trimming"`
}

// SummarizeSessionResult is the result of the summarize_session tool.
type SummarizeSessionResult struct {
	SessionID    string `json:"session_id"`
	Summary      string `json:"summary"`
	Truncated    bool   `json:"truncated"`
	KeptTokens   int    `json:"kept_tokens"`
	JSONPath     string `json:"json_path"`
	MarkdownPath string `json:"markdown_path"`
}

func (s *Server) handleSummarizeSession(ctx context.Context,
	req *mcp.CallToolRequest, args SummarizeSessionArgs) (
	*mcp.CallToolResult, SummarizeSessionResult, error) {

	svc := s.serviceFor(args.Model, args.MaxTokens)

	res, err := svc.SummarizeSession(ctx, args.Path, args.Label)
	if err != nil {
		return nil, SummarizeSessionResult{}, err
	}

	return nil, SummarizeSessionResult{
		SessionID:    res.Record.SessionID,
		Summary:      res.Record.Summary,
		Truncated:    res.Record.Truncated,
		KeptTokens:   res.Record.KeptTokens,
		JSONPath:     res.JSONPath,
		MarkdownPath: res.MarkdownPath,
	}, nil
}

// RefreshSummariesArgs are the arguments for the refresh_summaries tool.
type RefreshSummariesArgs struct {
	// SessionsDir overrides the directory searched for transcripts.
	SessionsDir string `json:"sessions_dir,omitempty" jsonschema:"Directory searched recursively for session transcripts"`

	// Limit restricts the refresh to the newest N sessions.
	Limit int `json:"limit,omitempty" jsonschema:"Only process the newest N sessions"`

	// Force rebuilds every summary regardless of cache state.
	Force bool `json:"force,omitempty" jsonschema:"Rebuild all summaries regardless of cache state"`
}

// RefreshSummariesResult is the result of the refresh_summaries tool.
type RefreshSummariesResult struct {
	Refreshed []RefreshedSession `json:"refreshed"`
	Failed    int                `json:"failed"`
	UpToDate  bool               `json:"up_to_date"`
}

// RefreshedSession identifies one summary rebuilt by a refresh pass.
type RefreshedSession struct {
	SessionID    string `json:"session_id"`
	MarkdownPath string `json:"markdown_path"`
}

func (s *Server) handleRefreshSummaries(ctx context.Context,
	req *mcp.CallToolRequest, args RefreshSummariesArgs) (
	*mcp.CallToolResult, RefreshSummariesResult, error) {

	svc := s.svc
	if args.SessionsDir != "" {
		summaryCfg := s.cfg.Summary
		summaryCfg.SessionsDir = args.SessionsDir
		svc = newService(s.cfg, summaryCfg)
	}

	res, err := svc.Refresh(ctx, summary.RefreshOptions{
		Limit: args.Limit,
		Force: args.Force,
	})
	if err != nil {
		return nil, RefreshSummariesResult{}, err
	}

	result := RefreshSummariesResult{
		Failed:   res.Failed,
		UpToDate: res.UpToDate,
	}
	for _, sess := range res.Refreshed {
		result.Refreshed = append(result.Refreshed, RefreshedSession{
			SessionID:    sess.Record.SessionID,
			MarkdownPath: sess.MarkdownPath,
		})
	}

	return nil, result, nil
}

// GetSummaryArgs are the arguments for the get_summary tool.
type GetSummaryArgs struct {
	SessionID string `json:"session_id" jsonschema:"Session ID to look up"`
}

// GetSummaryResult is the result of the get_summary tool: the full
// recorded summary for one session.
type GetSummaryResult struct {
	SessionID       string            `json:"session_id"`
	Label           string            `json:"label,omitempty"`
	GeneratedAt     string            `json:"generated_at"`
	Model           string            `json:"model"`
	Truncated       bool              `json:"truncated"`
	KeptTokens      int               `json:"kept_tokens"`
	Digest          string            `json:"digest"`
	Summary         string            `json:"summary"`
	KeyActions      []KeyActionResult `json:"key_actions"`
	FilesTouched    []string          `json:"files_touched"`
	Concerns        []string          `json:"concerns"`
	FollowUp        []string          `json:"follow_up"`
	SessionPath     string            `json:"session_path,omitempty"`
	LatestTimestamp string            `json:"latest_timestamp,omitempty"`
	SummarizedAt    string            `json:"summarized_at,omitempty"`
}

// KeyActionResult is one tracked work item in a summary.
type KeyActionResult struct {
	Description string `json:"description"`
	Status      string `json:"status"`
}

func (s *Server) handleGetSummary(ctx context.Context,
	req *mcp.CallToolRequest, args GetSummaryArgs) (
	*mcp.CallToolResult, GetSummaryResult, error) {

	index, err := summary.LoadIndex(s.cfg.Summary.IndexPath)
	if err != nil {
		return nil, GetSummaryResult{}, err
	}

	record, ok := index[args.SessionID]
	if !ok {
		return nil, GetSummaryResult{}, fmt.Errorf(
			"no summary recorded for session %q", args.SessionID,
		)
	}

	return nil, summaryResult(record), nil
}

// summaryResult converts an index record into the tool result shape.
func summaryResult(record summary.Record) GetSummaryResult {
	result := GetSummaryResult{
		SessionID:       record.SessionID,
		Label:           record.Label,
		GeneratedAt:     record.GeneratedAt,
		Model:           record.Model,
		Truncated:       record.Truncated,
		KeptTokens:      record.KeptTokens,
		Digest:          record.Digest,
		Summary:         record.Summary,
		FilesTouched:    record.FilesTouched,
		Concerns:        record.Concerns,
		FollowUp:        record.FollowUp,
		SessionPath:     record.SessionPath,
		LatestTimestamp: record.LatestTimestamp,
		SummarizedAt:    record.SummarizedAt,
	}

	for _, action := range record.KeyActions {
		result.KeyActions = append(result.KeyActions, KeyActionResult{
			Description: action.Description,
			Status:      action.Status,
		})
	}

	return result
}

// ListSummariesArgs are the arguments for the list_summaries tool.
type ListSummariesArgs struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of summaries to return,default=20"`
}

// ListSummariesResult is the result of the list_summaries tool.
type ListSummariesResult struct {
	Summaries []SummaryListing `json:"summaries"`
}

// SummaryListing is one indexed summary.
type SummaryListing struct {
	SessionID   string `json:"session_id"`
	Label       string `json:"label,omitempty"`
	GeneratedAt string `json:"generated_at"`
	Summary     string `json:"summary"`
}

func (s *Server) handleListSummaries(ctx context.Context,
	req *mcp.CallToolRequest, args ListSummariesArgs) (
	*mcp.CallToolResult, ListSummariesResult, error) {

	index, err := summary.LoadIndex(s.cfg.Summary.IndexPath)
	if err != nil {
		return nil, ListSummariesResult{}, err
	}

	limit := args.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	listings := make([]SummaryListing, 0, len(index))
	for _, record := range index {
		listings = append(listings, SummaryListing{
			SessionID:   record.SessionID,
			Label:       record.Label,
			GeneratedAt: record.GeneratedAt,
			Summary:     record.Summary,
		})
	}

	sort.Slice(listings, func(i, j int) bool {
		return generatedAfter(listings[i], listings[j])
	})

	if len(listings) > limit {
		listings = listings[:limit]
	}

	return nil, ListSummariesResult{Summaries: listings}, nil
}

// generatedAfter orders listings newest first by generation time. The
// timestamps are RFC 3339 strings whose fractional digits vary, so they
// are compared as instants, falling back to the raw strings and session
// ID to keep the order total.
func generatedAfter(a, b SummaryListing) bool {
	ta, errA := time.Parse(time.RFC3339Nano, a.GeneratedAt)
	tb, errB := time.Parse(time.RFC3339Nano, b.GeneratedAt)

	switch {
	case errA == nil && errB == nil && !ta.Equal(tb):
		return ta.After(tb)
	case a.GeneratedAt != b.GeneratedAt:
		return a.GeneratedAt > b.GeneratedAt
	default:
		return a.SessionID < b.SessionID
	}
}

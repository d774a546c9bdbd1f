package summary

import (
	"time"

	"github.com/BranchManager69/codextendo/internal/oai"
)

// Record is the durable form of one summarization. The per-session
// JSON artifact carries the core fields; the refresh index additionally
// carries the bookkeeping fields filled in after the artifact is
// written.
type Record struct {
	SessionID   string `json:"session_id"`
	Label       string `json:"label,omitempty"`
	GeneratedAt string `json:"generated_at"`
	Model       string `json:"model"`
	Truncated   bool   `json:"truncated"`
	KeptTokens  int    `json:"kept_tokens"`
	Digest      string `json:"digest"`

	oai.SummaryPayload

	// Bookkeeping, present in the index only.
	SessionPath     string `json:"session_path,omitempty"`
	LatestTimestamp string `json:"latest_timestamp,omitempty"`
	TokenCounter    string `json:"token_counter,omitempty"`
	HistoryPath     string `json:"history_path,omitempty"`
	SummarizedAt    string `json:"summarized_at,omitempty"`
}

// SessionSummary is the result of summarizing one session.
type SessionSummary struct {
	// Record is the full summary record, including bookkeeping.
	Record Record

	// JSONPath and MarkdownPath locate the written artifacts.
	JSONPath     string
	MarkdownPath string

	// HistoryPath locates the append-only history file.
	HistoryPath string

	// HTMLPath is set when HTML rendering is enabled.
	HTMLPath string
}

// formatTimestamp renders timestamps the way the index stores them.
// Staleness checks compare recorded strings against freshly formatted
// ones, so this must be deterministic for a given instant.
func formatTimestamp(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339Nano)
}

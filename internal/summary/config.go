package summary

import (
	"os"
	"path/filepath"
	"strconv"
)

const (
	// DefaultModel is the OpenAI model used for summarization when
	// CODEXTENDO_SUMMARY_MODEL is not set.
	DefaultModel = "gpt-5"

	// DefaultMaxTokens is the transcript token budget when
	// CODEXTENDO_SUMMARY_TOKEN_LIMIT is not set.
	DefaultMaxTokens = 200_000

	// DefaultConcurrency is the number of simultaneous summarizations
	// during a refresh pass. Sequential by default so output and API
	// load stay predictable.
	DefaultConcurrency = 1

	// DefaultHistoryLimit is the default number of generation history
	// entries returned.
	DefaultHistoryLimit = 20
)

// Environment variables consulted by DefaultConfig.
const (
	EnvModel      = "CODEXTENDO_SUMMARY_MODEL"
	EnvTokenLimit = "CODEXTENDO_SUMMARY_TOKEN_LIMIT"
	EnvLabelFile  = "CODEX_LABEL_FILE"
	EnvAPIKey     = "OPENAI_API_KEY"
	EnvAPIBase    = "OPENAI_API_BASE"
)

// Config holds configuration for the summary service.
type Config struct {
	// Model is the OpenAI model used for summarization.
	Model string

	// MaxTokens is the transcript token budget. Zero or negative
	// disables trimming.
	MaxTokens int

	// SummaryDir is the directory summary artifacts are written to.
	SummaryDir string

	// SessionsDir is the root searched recursively for session
	// transcripts during refresh.
	SessionsDir string

	// IndexPath locates the refresh cache index.
	IndexPath string

	// LabelFile is the JSON path-to-label map consulted when no label
	// is supplied explicitly.
	LabelFile string

	// APIKey authenticates requests to the OpenAI API.
	APIKey string

	// APIBase overrides the OpenAI API root, e.g. for a proxy.
	APIBase string

	// WriteHTML additionally renders each summary to HTML.
	WriteHTML bool

	// Concurrency bounds simultaneous summarizations during refresh.
	Concurrency int
}

// DefaultConfig returns a Config populated from the environment with
// the standard Codex locations filled in.
func DefaultConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	summaryDir := filepath.Join(home, ".codextendo", "summaries")

	return Config{
		Model:       envOr(EnvModel, DefaultModel),
		MaxTokens:   envIntOr(EnvTokenLimit, DefaultMaxTokens),
		SummaryDir:  summaryDir,
		SessionsDir: filepath.Join(home, ".codex", "sessions"),
		IndexPath:   filepath.Join(summaryDir, "index.json"),
		LabelFile: envOr(
			EnvLabelFile,
			filepath.Join(home, ".codex", "search_labels.json"),
		),
		APIKey:      os.Getenv(EnvAPIKey),
		APIBase:     os.Getenv(EnvAPIBase),
		Concurrency: DefaultConcurrency,
	}
}

// envOr returns the environment value for key, or fallback when unset
// or empty.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envIntOr returns the integer environment value for key, or fallback
// when unset or unparseable.
func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

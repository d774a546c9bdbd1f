package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/BranchManager69/codextendo/internal/history"
	"github.com/BranchManager69/codextendo/internal/oai"
	"github.com/BranchManager69/codextendo/internal/token"
	"github.com/BranchManager69/codextendo/internal/transcript"
)

// ErrNoContent is returned when a transcript renders to no segments at
// all, e.g. a session that only ever recorded bookkeeping lines.
var ErrNoContent = errors.New("no message content found in session")

// Summarizer produces a structured summary from a prompt pair.
type Summarizer interface {
	Summarize(
		ctx context.Context,
		model, systemPrompt, userPrompt string,
	) (*oai.SummaryPayload, error)
}

// GenerationRecorder persists summary generations durably.
type GenerationRecorder interface {
	RecordGeneration(
		ctx context.Context, params history.GenerationParams,
	) (history.Generation, error)
}

// Service turns session transcripts into summary artifacts.
type Service struct {
	cfg     Config
	counter *token.Counter
	client  Summarizer
	writer  *Writer
	history GenerationRecorder
	labels  map[string]string
	log     *slog.Logger
}

// ServiceOption configures optional Service collaborators.
type ServiceOption func(*Service)

// WithHistory attaches a durable generation store. Recording is best
// effort: failures are logged, not fatal.
func WithHistory(store GenerationRecorder) ServiceOption {
	return func(s *Service) {
		s.history = store
	}
}

// WithLabels supplies the transcript-path label map directly instead
// of loading it from cfg.LabelFile.
func WithLabels(labels map[string]string) ServiceOption {
	return func(s *Service) {
		s.labels = labels
	}
}

// NewService creates a summary service.
func NewService(
	cfg Config, client Summarizer, log *slog.Logger,
	opts ...ServiceOption,
) *Service {
	if log == nil {
		log = slog.Default()
	}

	s := &Service{
		cfg:     cfg,
		counter: token.NewCounter(),
		client:  client,
		writer:  NewWriter(cfg.SummaryDir, cfg.WriteHTML),
		log:     log.With("component", "summary"),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.labels == nil {
		s.labels = LoadLabelMap(cfg.LabelFile)
	}

	return s
}

// SummarizeSession summarizes one transcript end to end: read, trim,
// prompt the model, write the JSON/Markdown artifacts, append the
// history file, and record the generation. An empty label falls back
// to the label map.
func (s *Service) SummarizeSession(
	ctx context.Context, path, label string,
) (*SessionSummary, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("session file not found: %w", err)
	}

	sessionID := transcript.DeriveSessionID(path)
	if label == "" {
		label = s.labels[path]
	}

	tr, err := transcript.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(tr.Segments) == 0 {
		return nil, ErrNoContent
	}

	s.counter.WarnApproximate(s.log)

	kept, truncated, keptTokens := transcript.Trim(
		tr.Segments, s.cfg.MaxTokens, s.counter,
	)

	combined := make([]string, len(kept))
	for i, seg := range kept {
		combined[i] = seg.Combined
	}

	userPrompt := buildUserPrompt(promptParams{
		SessionID:       sessionID,
		Label:           label,
		Truncated:       truncated,
		KeptTokens:      keptTokens,
		TotalSegments:   len(tr.Segments),
		KeptSegments:    len(kept),
		LatestTimestamp: tr.LatestTimestamp,
		CombinedText:    strings.Join(combined, "\n\n"),
	})

	payload, err := s.client.Summarize(
		ctx, s.cfg.Model, summarizerSystemPrompt, userPrompt,
	)
	if err != nil {
		return nil, fmt.Errorf("request summary: %w", err)
	}

	record := Record{
		SessionID:      sessionID,
		Label:          label,
		GeneratedAt:    formatTimestamp(time.Now()),
		Model:          s.cfg.Model,
		Truncated:      truncated,
		KeptTokens:     keptTokens,
		Digest:         tr.Digest,
		SummaryPayload: *payload,
	}

	// The artifacts carry the core record only; bookkeeping fields are
	// filled in afterwards for the index.
	paths, err := s.writer.WriteRecord(record)
	if err != nil {
		return nil, err
	}

	record.SessionPath = path
	tr.LatestTimestamp.WhenSome(func(ts time.Time) {
		record.LatestTimestamp = formatTimestamp(ts)
	})
	if !s.counter.Precise() {
		record.TokenCounter = "approximate"
	}

	historyPath, err := s.writer.AppendHistory(record)
	if err != nil {
		return nil, err
	}
	record.HistoryPath = historyPath

	s.recordGeneration(ctx, record)

	return &SessionSummary{
		Record:       record,
		JSONPath:     paths.JSON,
		MarkdownPath: paths.Markdown,
		HistoryPath:  historyPath,
		HTMLPath:     paths.HTML,
	}, nil
}

// recordGeneration persists the generation when a history store is
// attached. Failures degrade to a warning so summarization itself
// never depends on the database.
func (s *Service) recordGeneration(ctx context.Context, record Record) {
	if s.history == nil {
		return
	}

	_, err := s.history.RecordGeneration(ctx, history.GenerationParams{
		SessionID:   record.SessionID,
		Label:       record.Label,
		Model:       record.Model,
		Digest:      record.Digest,
		Truncated:   record.Truncated,
		KeptTokens:  record.KeptTokens,
		Summary:     record.Summary,
		GeneratedAt: record.GeneratedAt,
	})
	if err != nil {
		s.log.Warn("Failed to record generation history",
			"session_id", record.SessionID, "error", err,
		)
	}
}

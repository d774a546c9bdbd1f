// Package history persists one row per summary generation so that past
// runs for a session can be inspected after the flat artifact files have
// been overwritten.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/BranchManager69/codextendo/internal/db"
	"github.com/google/uuid"
)

// DefaultListLimit is the number of generations returned for a session
// when the caller does not specify a limit.
const DefaultListLimit = 20

// GenerationParams holds the inputs recorded for a single summarizer run.
type GenerationParams struct {
	// SessionID is the session the summary was generated for.
	SessionID string

	// Label is the optional human-readable label attached to the run.
	Label string

	// Model is the model that produced the summary.
	Model string

	// Digest is the content digest of the transcript that was summarized.
	Digest string

	// Truncated is true if the transcript was trimmed to fit the token
	// budget before summarization.
	Truncated bool

	// KeptTokens is the number of transcript tokens that were sent to
	// the model.
	KeptTokens int

	// Summary is the TL;DR text of the generated summary.
	Summary string

	// GeneratedAt is the artifact timestamp, already formatted.
	GeneratedAt string
}

// Generation is a recorded summarizer run.
type Generation struct {
	// ID is the database row id.
	ID int64

	// GenerationID is the unique id assigned to this run.
	GenerationID string

	SessionID   string
	Label       string
	Model       string
	Digest      string
	Truncated   bool
	KeptTokens  int
	Summary     string
	GeneratedAt string

	// CreatedAt is when the row was recorded.
	CreatedAt time.Time
}

// Store records and lists summary generations in a SQLite database.
type Store struct {
	db *sql.DB

	txer *db.TransactionExecutor

	log *slog.Logger
}

// NewStore creates a new Store on top of an already opened and migrated
// database connection.
func NewStore(sqlDB *sql.DB, log *slog.Logger) *Store {
	log = log.With("component", "history")

	return &Store{
		db:   sqlDB,
		txer: db.NewTransactionExecutor(sqlDB, log),
		log:  log,
	}
}

// Open opens (creating if needed) the history database at the given path
// and returns a Store on top of it.
func Open(dbPath string, log *slog.Logger) (*Store, error) {
	sqliteStore, err := db.NewSqliteStore(&db.SqliteConfig{
		DatabaseFileName: dbPath,
	}, log)
	if err != nil {
		return nil, err
	}

	return NewStore(sqliteStore.DB(), log), nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordGeneration inserts a new generation row and returns it with its
// assigned ids filled in.
func (s *Store) RecordGeneration(ctx context.Context,
	params GenerationParams) (Generation, error) {

	now := time.Now().Unix()

	gen := Generation{
		GenerationID: uuid.NewString(),
		SessionID:    params.SessionID,
		Label:        params.Label,
		Model:        params.Model,
		Digest:       params.Digest,
		Truncated:    params.Truncated,
		KeptTokens:   params.KeptTokens,
		Summary:      params.Summary,
		GeneratedAt:  params.GeneratedAt,
		CreatedAt:    time.Unix(now, 0).UTC(),
	}

	err := s.txer.ExecTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO summary_generations (
				generation_id, session_id, label, model,
				digest, truncated, kept_tokens, summary,
				generated_at, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, gen.GenerationID, gen.SessionID, gen.Label, gen.Model,
			gen.Digest, gen.Truncated, gen.KeptTokens,
			gen.Summary, gen.GeneratedAt, now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert generation: %w",
				err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read generation id: %w",
				err)
		}
		gen.ID = id

		return nil
	})
	if err != nil {
		return Generation{}, err
	}

	return gen, nil
}

// ListBySession returns the recorded generations for the given session,
// newest first. A non-positive limit falls back to DefaultListLimit.
func (s *Store) ListBySession(ctx context.Context, sessionID string,
	limit int) ([]Generation, error) {

	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, generation_id, session_id, label, model, digest,
		       truncated, kept_tokens, summary, generated_at,
		       created_at
		FROM summary_generations
		WHERE session_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query generations: %w", err)
	}
	defer rows.Close()

	var gens []Generation
	for rows.Next() {
		var (
			gen       Generation
			createdAt int64
		)

		err := rows.Scan(
			&gen.ID, &gen.GenerationID, &gen.SessionID,
			&gen.Label, &gen.Model, &gen.Digest, &gen.Truncated,
			&gen.KeptTokens, &gen.Summary, &gen.GeneratedAt,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan generation: "+
				"%w", err)
		}

		gen.CreatedAt = time.Unix(createdAt, 0).UTC()
		gens = append(gens, gen)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating generations: %w", err)
	}

	return gens, nil
}

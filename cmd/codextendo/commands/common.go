package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/BranchManager69/codextendo/internal/db"
	"github.com/BranchManager69/codextendo/internal/history"
	"github.com/BranchManager69/codextendo/internal/oai"
	"github.com/BranchManager69/codextendo/internal/summary"
)

// newLogger builds the CLI logger on stderr. Commands print their
// results on stdout; the logger carries warnings and, with --verbose,
// debug detail.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// openHistoryStore opens the generation history database at --db or the
// default location, applying any pending migrations.
func openHistoryStore(log *slog.Logger) (*history.Store, error) {
	path := dbPath
	if path == "" {
		var err error
		path, err = db.DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}

	store, err := history.Open(path, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	return store, nil
}

// newService wires a summary service with the OpenAI client and, when
// the history database opens, durable generation recording. History is
// best effort here: a failure degrades to a warning since summarization
// itself does not depend on it. The returned cleanup closes whatever
// was opened.
func newService(cfg summary.Config, log *slog.Logger) (
	*summary.Service, func()) {

	client := oai.NewClient(cfg.APIBase, cfg.APIKey, 0)

	var opts []summary.ServiceOption
	cleanup := func() {}

	store, err := openHistoryStore(log)
	if err != nil {
		log.Warn("Generation history unavailable", "error", err)
	} else {
		opts = append(opts, summary.WithHistory(store))
		cleanup = func() { _ = store.Close() }
	}

	return summary.NewService(cfg, client, log, opts...), cleanup
}

// outputJSON outputs data as indented JSON on stdout.
func outputJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

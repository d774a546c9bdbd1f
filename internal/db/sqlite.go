package db

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultDBPath returns the default path for the generation history
// database.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".codextendo", "history.db"), nil
}

// OpenSQLite opens a SQLite database connection with WAL mode enabled and
// appropriate pragmas for performance and reliability.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	// Ensure the directory exists.
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open the database with foreign keys and WAL mode enabled via URI.
	dsn := fmt.Sprintf(
		"file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000",
		dbPath,
	)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for SQLite (single writer, multiple readers).
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// Verify connection and apply additional pragmas.
	if err := configurePragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	return db, nil
}

// SqliteConfig holds all the config arguments needed to interact with our
// sqlite DB.
type SqliteConfig struct {
	// DatabaseFileName is the full file path where the database file can
	// be found.
	DatabaseFileName string

	// SkipMigrations should be set to true if migrations shouldn't be
	// applied on open. The caller then becomes responsible for the schema
	// being current.
	SkipMigrations bool

	// SkipMigrationDBBackup should be set to true if no backup of the
	// database file should be taken before applying a schema upgrade.
	SkipMigrationDBBackup bool
}

// SqliteStore is a database store implementation that uses a sqlite backend.
type SqliteStore struct {
	cfg *SqliteConfig

	db *sql.DB
}

// NewSqliteStore attempts to open a new sqlite database based on the passed
// config, applying any pending schema migrations unless told otherwise.
func NewSqliteStore(cfg *SqliteConfig, log *slog.Logger) (*SqliteStore,
	error) {

	sqlDB, err := OpenSQLite(cfg.DatabaseFileName)
	if err != nil {
		return nil, err
	}

	if !cfg.SkipMigrations {
		var migrateOpts []MigrateOpt
		if cfg.SkipMigrationDBBackup {
			migrateOpts = append(migrateOpts, WithSkipBackup())
		}

		err := ApplyMigrations(
			sqlDB, cfg.DatabaseFileName, log, TargetLatest,
			migrateOpts...,
		)
		if err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to apply migrations: "+
				"%w", err)
		}
	}

	return &SqliteStore{
		cfg: cfg,
		db:  sqlDB,
	}, nil
}

// DB returns the underlying database connection.
func (s *SqliteStore) DB() *sql.DB {
	return s.db
}

// Close closes the underlying database connection.
func (s *SqliteStore) Close() error {
	return s.db.Close()
}

// configurePragmas sets additional SQLite pragmas for optimal performance.
func configurePragmas(db *sql.DB) error {
	pragmas := []string{
		// Synchronous mode: NORMAL provides good durability with better
		// performance than FULL.
		"PRAGMA synchronous = NORMAL",

		// Cache size: Negative value is in KiB, 64MB cache.
		"PRAGMA cache_size = -65536",

		// Memory-mapped I/O: 256MB for faster reads.
		"PRAGMA mmap_size = 268435456",

		// Temp store: Keep temporary tables in memory.
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

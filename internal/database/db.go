package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/streed/mod-notes/internal/config"
	"github.com/streed/mod-notes/internal/logger"
	"github.com/streed/mod-notes/internal/migrations"
)

type DB struct {
	conn      *sql.DB
	cfg       *config.Config
	textIndex bool
}

func New(cfg *config.Config) (*DB, error) {
	return NewWithContext(context.Background(), cfg)
}

func NewWithContext(ctx context.Context, cfg *config.Config) (*DB, error) {
	dbPath := cfg.GetDatabasePath()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	logger.Debug("Database path: %s", dbPath)

	conn, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn, cfg: cfg}
	if err := db.initialize(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return db, nil
}

func (db *DB) initialize(ctx context.Context) error {
	var version string
	if err := db.conn.QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&version); err != nil {
		return fmt.Errorf("failed to reach sqlite: %w", err)
	}
	logger.Debug("sqlite version %s", version)

	if _, err := migrations.NewRunner(db.conn).Run(ctx); err != nil {
		return err
	}

	db.textIndex = db.ensureTextIndex(ctx)
	return nil
}

// ensureTextIndex creates the FTS4 index over notes and the triggers keeping it
// in sync. When the index cannot be used its triggers are dropped, so inserts
// keep working and lexical search falls back to substring matching.
func (db *DB) ensureTextIndex(ctx context.Context) bool {
	var schema string
	err := db.conn.QueryRowContext(ctx,
		"SELECT sql FROM sqlite_master WHERE type='table' AND name='notes_fts'",
	).Scan(&schema)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		logger.Warn("Failed to inspect text index: %v", err)
		db.dropTextIndexTriggers(ctx)
		return false
	}
	exists := err == nil

	// Indexes written by another full-text module are replaced
	if exists && !strings.Contains(strings.ToLower(schema), "using fts4") {
		db.dropTextIndexTriggers(ctx)
		if _, err := db.conn.ExecContext(ctx, "DROP TABLE notes_fts"); err != nil {
			logger.Warn("Text index unavailable, cannot replace legacy notes_fts: %v", err)
			return false
		}
		logger.Info("Replaced legacy notes_fts text index")
		exists = false
	}

	_, err = db.conn.ExecContext(ctx,
		"CREATE VIRTUAL TABLE IF NOT EXISTS notes_fts USING fts4(content='notes', title, body)",
	)
	if err != nil {
		logger.Warn("Text index unavailable (fts4 may not be compiled in): %v", err)
		db.dropTextIndexTriggers(ctx)
		return false
	}

	// CREATE ... IF NOT EXISTS never loads the module of an existing table
	var indexed int
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM notes_fts WHERE docid < 0").Scan(&indexed); err != nil {
		logger.Warn("Text index unusable: %v", err)
		db.dropTextIndexTriggers(ctx)
		return false
	}

	var synced int
	err = db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='trigger' AND name IN ('notes_fts_ai', 'notes_fts_au', 'notes_fts_bu', 'notes_fts_bd')",
	).Scan(&synced)
	if err != nil {
		logger.Warn("Failed to inspect text index triggers: %v", err)
		return false
	}

	triggers := []string{
		`CREATE TRIGGER IF NOT EXISTS notes_fts_bu BEFORE UPDATE ON notes BEGIN
			DELETE FROM notes_fts WHERE docid = old.id;
		END`,
		`CREATE TRIGGER IF NOT EXISTS notes_fts_bd BEFORE DELETE ON notes BEGIN
			DELETE FROM notes_fts WHERE docid = old.id;
		END`,
		`CREATE TRIGGER IF NOT EXISTS notes_fts_au AFTER UPDATE ON notes BEGIN
			INSERT INTO notes_fts(docid, title, body) VALUES (new.id, new.title, new.body);
		END`,
		`CREATE TRIGGER IF NOT EXISTS notes_fts_ai AFTER INSERT ON notes BEGIN
			INSERT INTO notes_fts(docid, title, body) VALUES (new.id, new.title, new.body);
		END`,
	}
	for _, stmt := range triggers {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			logger.Warn("Failed to create text index trigger: %v", err)
			db.dropTextIndexTriggers(ctx)
			return false
		}
	}

	// Notes written while the triggers were missing are not indexed yet
	if !exists || synced < len(triggers) {
		if _, err := db.conn.ExecContext(ctx, "INSERT INTO notes_fts(notes_fts) VALUES ('rebuild')"); err != nil {
			logger.Warn("Failed to build text index: %v", err)
			db.dropTextIndexTriggers(ctx)
			return false
		}
		logger.Debug("Built notes_fts text index")
	}

	return true
}

// dropTextIndexTriggers removes every trigger writing to notes_fts, otherwise
// each insert would fail against an index that cannot be opened.
func (db *DB) dropTextIndexTriggers(ctx context.Context) {
	for _, name := range []string{"notes_fts_ai", "notes_fts_ad", "notes_fts_au", "notes_fts_bu", "notes_fts_bd"} {
		if _, err := db.conn.ExecContext(ctx, "DROP TRIGGER IF EXISTS "+name); err != nil {
			logger.Warn("Failed to drop trigger %s: %v", name, err)
		}
	}
}

// TextIndexAvailable reports whether the full-text index was set up
func (db *DB) TextIndexAvailable() bool {
	return db.textIndex
}

func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Conn() *sql.DB {
	return db.conn
}

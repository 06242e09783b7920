package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

// allMigrations returns every schema migration; add new ones at the end
func allMigrations() []Migration {
	return []Migration{
		{
			ID:          "000_initial_schema",
			Description: "Create notes table",
			Up:          migration000Up,
			Down:        migration000Down,
		},
		{
			ID:          "001_notes_created_at_index",
			Description: "Index notes by creation time for newest-first listing",
			Up:          migration001Up,
			Down:        migration001Down,
		},
	}
}

func migration000Up(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS notes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL CHECK (length(title) BETWEEN 1 AND 200),
			body TEXT NOT NULL CHECK (length(body) BETWEEN 1 AND 5000),
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create notes table: %w", err)
	}
	return nil
}

func migration000Down(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS notes"); err != nil {
		return fmt.Errorf("failed to drop notes table: %w", err)
	}
	return nil
}

func migration001Up(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx,
		"CREATE INDEX IF NOT EXISTS idx_notes_created_at ON notes(created_at DESC, id DESC)")
	if err != nil {
		return fmt.Errorf("failed to create created_at index: %w", err)
	}
	return nil
}

func migration001Down(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, "DROP INDEX IF EXISTS idx_notes_created_at"); err != nil {
		return fmt.Errorf("failed to drop created_at index: %w", err)
	}
	return nil
}

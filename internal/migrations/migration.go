package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/streed/mod-notes/internal/logger"
)

// Migration is a single, ordered schema change
type Migration struct {
	ID          string // Unique, sortable identifier (e.g., "000_initial_schema")
	Description string
	Up          func(ctx context.Context, tx *sql.Tx) error
	Down        func(ctx context.Context, tx *sql.Tx) error // optional
}

// MigrationStatus reports whether a migration has been applied
type MigrationStatus struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Applied     bool   `json:"applied"`
}

// Runner applies migrations and records them in schema_migrations
type Runner struct {
	db         *sql.DB
	migrations []Migration
}

func NewRunner(db *sql.DB) *Runner {
	return newRunner(db, allMigrations())
}

func newRunner(db *sql.DB, migrations []Migration) *Runner {
	sorted := make([]Migration, len(migrations))
	copy(sorted, migrations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return &Runner{db: db, migrations: sorted}
}

func (r *Runner) ensureTable(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id TEXT PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func (r *Runner) applied(ctx context.Context) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan migration id: %w", err)
		}
		applied[id] = true
	}
	return applied, rows.Err()
}

// Run applies every pending migration, each in its own transaction, and returns
// how many were applied.
func (r *Runner) Run(ctx context.Context) (int, error) {
	if err := r.ensureTable(ctx); err != nil {
		return 0, err
	}

	applied, err := r.applied(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, m := range r.migrations {
		if applied[m.ID] {
			logger.Debug("Migration %s already applied, skipping", m.ID)
			continue
		}

		logger.Debug("Running migration: %s - %s", m.ID, m.Description)
		if err := r.apply(ctx, m); err != nil {
			return count, err
		}
		count++
	}

	if count > 0 {
		logger.Info("Applied %d database migration(s)", count)
	}
	return count, nil
}

func (r *Runner) apply(ctx context.Context, m Migration) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction for migration %s: %w", m.ID, err)
	}

	if err := m.Up(ctx, tx); err != nil {
		rollback(tx)
		return fmt.Errorf("migration %s failed: %w", m.ID, err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (id, description, applied_at) VALUES (?, ?, ?)",
		m.ID, m.Description, time.Now().UTC(),
	)
	if err != nil {
		rollback(tx)
		return fmt.Errorf("failed to record migration %s: %w", m.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %s: %w", m.ID, err)
	}
	return nil
}

// Status lists every known migration with its applied flag
func (r *Runner) Status(ctx context.Context) ([]MigrationStatus, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}
	applied, err := r.applied(ctx)
	if err != nil {
		return nil, err
	}

	status := make([]MigrationStatus, 0, len(r.migrations))
	for _, m := range r.migrations {
		status = append(status, MigrationStatus{
			ID:          m.ID,
			Description: m.Description,
			Applied:     applied[m.ID],
		})
	}
	return status, nil
}

// Rollback reverts a single applied migration that defines Down
func (r *Runner) Rollback(ctx context.Context, id string) error {
	var target *Migration
	for i := range r.migrations {
		if r.migrations[i].ID == id {
			target = &r.migrations[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("migration %s not found", id)
	}
	if target.Down == nil {
		return fmt.Errorf("migration %s does not support rollback", id)
	}

	applied, err := r.applied(ctx)
	if err != nil {
		return err
	}
	if !applied[id] {
		return fmt.Errorf("migration %s is not applied", id)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction for rollback %s: %w", id, err)
	}
	if err := target.Down(ctx, tx); err != nil {
		rollback(tx)
		return fmt.Errorf("rollback %s failed: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM schema_migrations WHERE id = ?", id); err != nil {
		rollback(tx)
		return fmt.Errorf("failed to remove migration record %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rollback %s: %w", id, err)
	}

	logger.Info("Migration %s rolled back", id)
	return nil
}

func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil {
		logger.Error("Failed to rollback transaction: %v", err)
	}
}

package migrations

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func openTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunAppliesAllMigrations(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	runner := NewRunner(db)

	applied, err := runner.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if applied != len(allMigrations()) {
		t.Errorf("Expected %d applied, got %d", len(allMigrations()), applied)
	}

	again, err := runner.Run(ctx)
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if again != 0 {
		t.Errorf("Expected no pending migrations on second run, got %d", again)
	}

	status, err := runner.Status(ctx)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	for _, s := range status {
		if !s.Applied {
			t.Errorf("Migration %s should be applied", s.ID)
		}
	}
}

func TestRunOrdersByID(t *testing.T) {
	db := openTestDB(t)
	var order []string
	record := func(id string) func(context.Context, *sql.Tx) error {
		return func(context.Context, *sql.Tx) error {
			order = append(order, id)
			return nil
		}
	}

	runner := newRunner(db, []Migration{
		{ID: "002_c", Description: "c", Up: record("002_c")},
		{ID: "000_a", Description: "a", Up: record("000_a")},
		{ID: "001_b", Description: "b", Up: record("001_b")},
	})
	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	expected := []string{"000_a", "001_b", "002_c"}
	for i := range expected {
		if order[i] != expected[i] {
			t.Fatalf("Expected order %v, got %v", expected, order)
		}
	}
}

func TestRollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	runner := NewRunner(db)

	if _, err := runner.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if err := runner.Rollback(ctx, "001_notes_created_at_index"); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}

	var indexes int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name='idx_notes_created_at'",
	).Scan(&indexes)
	if err != nil {
		t.Fatalf("Failed to inspect indexes: %v", err)
	}
	if indexes != 0 {
		t.Error("Index should be dropped after rollback")
	}

	if err := runner.Rollback(ctx, "001_notes_created_at_index"); err == nil {
		t.Error("Expected error rolling back an unapplied migration")
	}
	if err := runner.Rollback(ctx, "999_missing"); err == nil {
		t.Error("Expected error rolling back an unknown migration")
	}
}

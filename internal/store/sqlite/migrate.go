package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is the latest schema version the migrator knows.
const SchemaVersion = 1

// Migrate creates the record tables and brings them up to SchemaVersion.
// It is safe to run on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("migrate: db is nil")
	}

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY);`); err != nil {
		return fmt.Errorf("migrate: create schema_migrations: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations;`).Scan(&current); err != nil {
		return fmt.Errorf("migrate: read current version: %w", err)
	}
	if current >= SchemaVersion {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migrate: begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	steps := []struct {
		name string
		stmt string
	}{
		{"create records table", `
			CREATE TABLE IF NOT EXISTS records (
				id TEXT PRIMARY KEY,
				form TEXT NOT NULL,
				payload TEXT NOT NULL,
				submitted_at TEXT NOT NULL
			);`},
		{"create stays table", `
			CREATE TABLE IF NOT EXISTS stays (
				record_id TEXT NOT NULL,
				position INTEGER NOT NULL,
				name TEXT NOT NULL,
				nights INTEGER NOT NULL DEFAULT 0,
				PRIMARY KEY (record_id, position),
				FOREIGN KEY(record_id) REFERENCES records(id)
			);`},
		{"create idx_records_form_submitted", `CREATE INDEX IF NOT EXISTS idx_records_form_submitted ON records(form, submitted_at);`},
	}
	for _, step := range steps {
		if _, err := tx.ExecContext(ctx, step.stmt); err != nil {
			return fmt.Errorf("migrate: %s: %w", step.name, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations(version) VALUES (?);`, SchemaVersion); err != nil {
		return fmt.Errorf("migrate: record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate: commit transaction: %w", err)
	}
	return nil
}

package migration

import (
	"context"
	"log"

	"jobmetrics/internal/errors"

	"github.com/jmoiron/sqlx"
)

// MigrationRunner creates the run store schema. Every statement is
// idempotent, so Run can be called on each start-up.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createSchemaMigrationsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create schema_migrations table")
	}

	if err := r.createRunsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create runs table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	if err := r.recordVersion(ctx, db); err != nil {
		return errors.Wrap(err, "failed to record schema version")
	}

	return nil
}

func (r *MigrationRunner) createSchemaMigrationsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(32) PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

// created_at is a plain TIMESTAMP: the sqlite driver only maps declared
// TIMESTAMP/DATETIME/DATE columns back to time.Time.
func (r *MigrationRunner) createRunsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id VARCHAR(36) PRIMARY KEY,
			source_hash VARCHAR(64) NOT NULL,
			filename TEXT NOT NULL DEFAULT '',
			completed_rows INTEGER NOT NULL DEFAULT 0,
			in_progress_rows INTEGER NOT NULL DEFAULT 0,
			insufficient TEXT NOT NULL DEFAULT '[]',
			report TEXT,
			created_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_runs_source_hash ON runs(source_hash)",
		"CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC)",
	}

	for _, idxSQL := range indexes {
		if _, err := db.ExecContext(ctx, idxSQL); err != nil {
			// Log but don't fail on index creation errors
			log.Printf("[Migration] Warning: failed to create index: %v", err)
		}
	}

	return nil
}

func (r *MigrationRunner) recordVersion(ctx context.Context, db *sqlx.DB) error {
	var n int
	if err := db.GetContext(ctx, &n, db.Rebind(`SELECT COUNT(*) FROM schema_migrations WHERE version = ?`), r.version); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err := db.ExecContext(ctx, db.Rebind(`INSERT INTO schema_migrations (version) VALUES (?)`), r.version)
	if err == nil {
		log.Printf("[Migration] Applied schema version %s", r.version)
	}
	return err
}

package migration

import (
	"context"

	"github.com/jmoiron/sqlx"

	"talentmetrics/internal/errors"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner creates the report store schema. Every statement is
// idempotent so Run is safe on every start.
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

// Run executes all database migrations in order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createReportRunsTable(ctx, db); err != nil {
		return errors.Wrap(errors.WithCode(errors.CodeDatabaseError, err), "failed to create report_runs table")
	}

	if err := r.createReportTablesTable(ctx, db); err != nil {
		return errors.Wrap(errors.WithCode(errors.CodeDatabaseError, err), "failed to create report_tables table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(errors.WithCode(errors.CodeDatabaseError, err), "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createReportRunsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS report_runs (
			run_id UUID PRIMARY KEY,
			generated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			label_version VARCHAR(100) NOT NULL DEFAULT '',
			diagnostics JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createReportTablesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS report_tables (
			run_id UUID NOT NULL REFERENCES report_runs(run_id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			position INTEGER NOT NULL,
			columns JSONB NOT NULL,
			rows JSONB NOT NULL,
			degraded BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			PRIMARY KEY (run_id, name)
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_report_tables_run_position ON report_tables(run_id, position);
		CREATE INDEX IF NOT EXISTS idx_report_runs_generated_at ON report_runs(generated_at DESC);
	`)
	return err
}

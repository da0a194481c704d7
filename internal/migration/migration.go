package migration

import (
	"context"

	"kickpredict/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
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

// Statements returns the DDL in execution order
func (r *MigrationRunner) Statements() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS rate_tables (
			name VARCHAR(64) NOT NULL,
			key TEXT NOT NULL,
			mean_goal DOUBLE PRECISION NOT NULL CHECK (mean_goal > 0),
			PRIMARY KEY (name, key)
		)`,
		`CREATE TABLE IF NOT EXISTS model_artifacts (
			id VARCHAR(36) PRIMARY KEY,
			schema_version VARCHAR(20) NOT NULL,
			payload JSONB NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS training_reports (
			id VARCHAR(36) PRIMARY KEY,
			body TEXT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
		"CREATE INDEX IF NOT EXISTS idx_model_artifacts_created_at ON model_artifacts(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_training_reports_created_at ON training_reports(created_at DESC)",
	}
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range r.Statements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.WithCode(errors.CodeDatabaseError, errors.Wrapf(err, "migration step %d failed", i+1))
		}
	}
	return nil
}

package migration

import (
	"context"

	"gundash/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations. The statements are
// plain SQL understood by both PostgreSQL and SQLite.
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
	if err := r.createIntentModelsTable(ctx, db); err != nil {
		return errors.Wrap(errors.WithCode(errors.CodeDatabaseError, err), "failed to create intent_models table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(errors.WithCode(errors.CodeDatabaseError, err), "failed to create indexes")
	}

	return nil
}

// created_at holds unix nanoseconds so ordering is identical on both engines
func (r *MigrationRunner) createIntentModelsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS intent_models (
			id VARCHAR(64) PRIMARY KEY,
			created_at BIGINT NOT NULL,
			dataset_fingerprint VARCHAR(64) NOT NULL,
			input_age INTEGER NOT NULL,
			input_sex VARCHAR(32) NOT NULL,
			input_race VARCHAR(128) NOT NULL,
			accuracy DOUBLE PRECISION NOT NULL,
			payload TEXT NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	statements := []string{
		`CREATE INDEX IF NOT EXISTS idx_intent_models_created_at ON intent_models (created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_intent_models_key ON intent_models (dataset_fingerprint, input_age, input_sex, input_race)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

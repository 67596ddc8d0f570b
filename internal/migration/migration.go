package migration

import (
	"context"
	"fmt"
	"regexp"

	"happydash/internal/errors"

	"github.com/jmoiron/sqlx"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner creates the observations table and its indexes
type MigrationRunner struct {
	version string
	table   string
}

// NewRunner creates a new migration runner for table
func NewRunner(table string) (*MigrationRunner, error) {
	if !identifier.MatchString(table) {
		return nil, errors.ConfigInvalid(fmt.Sprintf("invalid table name %q", table))
	}
	return &MigrationRunner{
		version: "1.0.0",
		table:   table,
	}, nil
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Table returns the migrated table name
func (r *MigrationRunner) Table() string {
	return r.table
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	for _, step := range r.Statements() {
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			return errors.Wrap(errors.DatabaseError(step.Name, err), "failed to run migration")
		}
	}
	return nil
}

// Step is one named migration statement
type Step struct {
	Name string
	SQL  string
}

// Statements lists the migration statements in execution order
func (r *MigrationRunner) Statements() []Step {
	return []Step{
		{
			Name: "create " + r.table + " table",
			SQL: fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			country TEXT NOT NULL,
			year INTEGER NOT NULL,
			rank INTEGER,
			score DOUBLE PRECISION,
			upper_whisker DOUBLE PRECISION,
			lower_whisker DOUBLE PRECISION,
			gdp_per_capita DOUBLE PRECISION,
			social_support DOUBLE PRECISION,
			healthy_life_expectancy DOUBLE PRECISION,
			freedom DOUBLE PRECISION,
			generosity DOUBLE PRECISION,
			corruption DOUBLE PRECISION,
			residual DOUBLE PRECISION,
			imported_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			PRIMARY KEY (country, year)
		)`, r.table),
		},
		{
			Name: "create " + r.table + " year index",
			SQL:  fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_year ON %s(year)`, r.table, r.table),
		},
	}
}

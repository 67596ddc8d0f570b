package migration

import (
	"strings"
	"testing"

	"happydash/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunnerValidatesTable(t *testing.T) {
	for _, name := range []string{"", "1table", "obs; DROP TABLE users", "public.obs", "obs-2024"} {
		_, err := NewRunner(name)
		require.Error(t, err, name)
		assert.True(t, errors.IsCode(err, errors.CodeConfigInvalid))
	}

	r, err := NewRunner("happiness_observations")
	require.NoError(t, err)
	assert.Equal(t, "happiness_observations", r.Table())
	assert.Equal(t, "1.0.0", r.Version())
}

func TestStatements(t *testing.T) {
	r, err := NewRunner("whr")
	require.NoError(t, err)

	steps := r.Statements()
	require.Len(t, steps, 2)

	create := steps[0].SQL
	assert.Contains(t, create, "CREATE TABLE IF NOT EXISTS whr")
	assert.Contains(t, create, "PRIMARY KEY (country, year)")
	for _, column := range []string{"rank INTEGER", "score DOUBLE PRECISION", "residual DOUBLE PRECISION", "corruption"} {
		assert.Contains(t, create, column)
	}
	assert.True(t, strings.HasPrefix(steps[1].SQL, "CREATE INDEX IF NOT EXISTS idx_whr_year ON whr(year)"))
}

var _ Migrator = (*MigrationRunner)(nil)

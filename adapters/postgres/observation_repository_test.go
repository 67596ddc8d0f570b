package postgres

import (
	"math"
	"testing"

	"happydash/domain/happiness"
	"happydash/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowConversion(t *testing.T) {
	o := happiness.MissingObservation("Chad", 2023)
	o.Score = 4.4
	o.GDP = math.Inf(1)

	row := toRow(o)
	assert.Equal(t, "Chad", row.Country)
	assert.Equal(t, 2023, row.Year)
	assert.False(t, row.Rank.Valid)
	assert.True(t, row.Score.Valid)
	assert.Equal(t, 4.4, row.Score.Float64)
	assert.False(t, row.GDP.Valid, "infinities are stored as NULL")
	assert.False(t, row.Freedom.Valid)

	back := row.observation()
	assert.Equal(t, 0, back.Rank)
	assert.Equal(t, 4.4, back.Score)
	assert.True(t, math.IsNaN(back.GDP))
	assert.True(t, math.IsNaN(back.Residual))
}

func TestRowConversionRoundTripsValues(t *testing.T) {
	o := happiness.Observation{
		Country: "Finland", Year: 2024, Rank: 1, Score: 7.736,
		UpperWhisker: 7.81, LowerWhisker: 7.66, GDP: 1.749, Social: 1.783, Health: 0.824,
		Freedom: 0.986, Generosity: 0.11, Corruption: 0.502, Residual: 1.782,
	}
	assert.Equal(t, o, toRow(o).observation())
}

func TestNewObservationRepositoryRejectsBadTable(t *testing.T) {
	_, err := NewObservationRepository(nil, "obs; DROP TABLE x", nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeConfigInvalid))

	repo, err := NewObservationRepository(nil, "whr", nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres:whr", repo.Location())
}

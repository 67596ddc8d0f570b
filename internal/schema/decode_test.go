package schema

import (
	"math"
	"testing"

	"happydash/adapters/excel"
	"happydash/domain/happiness"
	"happydash/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustProfile(t *testing.T, name string) Profile {
	t.Helper()
	p, err := DefaultRegistry().Get(name)
	require.NoError(t, err)
	return p
}

func TestDecodeByName(t *testing.T) {
	data := &excel.ExcelData{
		Headers: []string{"Year", "Rank", "Country name", "Ladder score", "Explained by: Log GDP per capita", "Explained by: Social support"},
		Rows: [][]string{
			{"2023", "1", "Finland", "7.741", "1.844", "1.572"},
			{"2023", "", "Chad", "4.2", "NA", ""},
			{"", "3", "Nowhere", "5.0", "1", "1"},
			{"2023.5", "4", "Halfland", "5.0", "1", "1"},
			{"2023", "5", "", "5.0", "1", "1"},
		},
	}

	table, report, err := mustProfile(t, ProfileCSV).Decode(data)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Rows)
	assert.Equal(t, 3, report.Dropped)
	assert.Contains(t, report.MissingOptional, string(happiness.ColFreedom))

	rows := table.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "Finland", rows[0].Country)
	assert.Equal(t, 2023, rows[0].Year)
	assert.Equal(t, 1, rows[0].Rank)
	assert.InDelta(t, 7.741, rows[0].Score, 1e-9)
	assert.InDelta(t, 1.844, rows[0].GDP, 1e-9)
	assert.True(t, math.IsNaN(rows[0].Freedom), "unmapped columns are missing")

	assert.Equal(t, 0, rows[1].Rank)
	assert.True(t, math.IsNaN(rows[1].GDP))
	assert.True(t, math.IsNaN(rows[1].Social))
}

func TestDecodeHeaderAliasesAreCaseInsensitive(t *testing.T) {
	data := &excel.ExcelData{
		Headers: []string{"COUNTRY", "year", "life ladder"},
		Rows:    [][]string{{"Brazil", "2011", "6.8"}},
	}
	table, _, err := mustProfile(t, ProfileCSV).Decode(data)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.InDelta(t, 6.8, table.Rows()[0].Score, 1e-9)
}

func TestDecodeByPositionWithDecimalComma(t *testing.T) {
	data := &excel.ExcelData{
		Headers: []string{"Ano", "Posição", "País", "Pontuação", "Sup", "Inf", "PIB", "Social", "Saúde", "Liberdade", "Generosidade", "Corrupção", "Distopia"},
		Rows: [][]string{
			{"2024", "1", "Finlândia", "7,736", "7,81", "7,66", "1,749", "1,783", "0,824", "0,986", "0,11", "0,502", "1,782"},
		},
	}

	table, report, err := mustProfile(t, ProfileSheet).Decode(data)
	require.NoError(t, err)
	assert.Empty(t, report.MissingOptional)

	rows := table.Rows()
	require.Len(t, rows, 1)
	o := rows[0]
	assert.Equal(t, "Finlândia", o.Country)
	assert.Equal(t, 2024, o.Year)
	assert.InDelta(t, 7.736, o.Score, 1e-9)
	assert.InDelta(t, 1.749, o.GDP, 1e-9)
	assert.InDelta(t, 0.502, o.Corruption, 1e-9)
	assert.InDelta(t, 1.782, o.Residual, 1e-9)
}

func TestDecodeMissingRequiredColumn(t *testing.T) {
	data := &excel.ExcelData{
		Headers: []string{"Country name", "Ladder score"},
		Rows:    [][]string{{"Finland", "7.7"}},
	}
	_, _, err := mustProfile(t, ProfileCSV).Decode(data)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeSchemaMismatch))
	assert.Contains(t, err.Error(), `"year"`)
}

func TestDecodeNoRows(t *testing.T) {
	_, _, err := mustProfile(t, ProfileCSV).Decode(&excel.ExcelData{Headers: []string{"year"}})
	assert.True(t, errors.IsCode(err, errors.CodeSchemaMismatch))
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{ProfileCSV, ProfileSheet}, r.Names())

	_, err := r.Get("missing")
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))

	err = r.Add([]byte(`
profiles:
  - name: custom
    by: position
    fields:
      - {column: country, position: 1, required: true}
      - {column: year, position: 0, required: true}
`))
	require.NoError(t, err)
	p, err := r.Get("custom")
	require.NoError(t, err)
	assert.Equal(t, ByPosition, p.By)
}

func TestProfileValidate(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad yaml", "profiles: [::"},
		{"unknown match", "profiles:\n  - name: x\n    by: guess\n"},
		{"unknown column", "profiles:\n  - name: x\n    by: position\n    fields:\n      - {column: mood, position: 0}\n"},
		{"year unmapped", "profiles:\n  - name: x\n    by: position\n    fields:\n      - {column: country, position: 0}\n"},
		{"no headers", "profiles:\n  - name: x\n    by: name\n    fields:\n      - {column: country}\n      - {column: year, headers: [year]}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := DefaultRegistry().Add([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.CodeConfigInvalid))
		})
	}
}

func TestLoadRegistryMissingFile(t *testing.T) {
	_, err := LoadRegistry("/does/not/exist.yaml")
	assert.Error(t, err)

	r, err := LoadRegistry("")
	require.NoError(t, err)
	assert.Len(t, r.Names(), 2)
}

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DATA_URL", "SHEET_ID", "SHEET_NAME", "SCHEMA_PROFILE", "SCHEMA_FILE", "DATABASE_URL", "DEFAULT_COUNTRIES", "PORT", "LOG_FORMAT"} {
		t.Setenv(key, "")
	}
	t.Setenv("DATA_SOURCE", "sample")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestOptionsJSON(t *testing.T) {
	sampleEnv(t)

	out, err := run(t, "options", "--format", "json")
	require.NoError(t, err)

	var opts struct {
		Years     []int    `json:"years"`
		Countries []string `json:"countries"`
		Default   struct {
			Year      int      `json:"year"`
			Countries []string `json:"countries"`
		} `json:"default"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &opts))
	assert.Equal(t, 2011, opts.Years[0])
	assert.Equal(t, 2024, opts.Years[len(opts.Years)-1])
	assert.Contains(t, opts.Countries, "Finland")
	assert.Equal(t, 2024, opts.Default.Year)
	assert.Equal(t, []string{"Brazil", "Finland", "United States"}, opts.Default.Countries)
}

func TestDotEnvIsLoaded(t *testing.T) {
	sampleEnv(t)
	// registered for restore, then removed so the .env value applies
	t.Setenv("DEFAULT_COUNTRIES", "")
	require.NoError(t, os.Unsetenv("DEFAULT_COUNTRIES"))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DEFAULT_COUNTRIES=Kenya,Japan\n"), 0o644))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	out, err := run(t, "options", "--format", "json")
	require.NoError(t, err)

	var opts struct {
		Default struct {
			Countries []string `json:"countries"`
		} `json:"default"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &opts))
	assert.Equal(t, []string{"Kenya", "Japan"}, opts.Default.Countries)
}

func TestFilterJSON(t *testing.T) {
	sampleEnv(t)

	out, err := run(t, "filter", "--format", "json", "--year", "2023", "--country", "Brazil,Finland")
	require.NoError(t, err)

	var body struct {
		Rows []struct {
			Country string `json:"country"`
			Year    int    `json:"year"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	require.Len(t, body.Rows, 2)
	for _, r := range body.Rows {
		assert.Equal(t, 2023, r.Year)
		assert.Contains(t, []string{"Brazil", "Finland"}, r.Country)
	}
}

func TestFilterTableEmptySelection(t *testing.T) {
	sampleEnv(t)

	out, err := run(t, "filter", "--year", "2023", "--country", "Atlantis")
	require.NoError(t, err)
	assert.Contains(t, out, "No data for the current selection")
}

func TestDescribeTable(t *testing.T) {
	sampleEnv(t)

	out, err := run(t, "describe", "--year", "2022")
	require.NoError(t, err)
	assert.Contains(t, out, "Happiness score")
	assert.Contains(t, out, "MEAN")
}

func TestCorrJSON(t *testing.T) {
	sampleEnv(t)

	out, err := run(t, "corr", "--format", "json", "--year", "2020", "--country", "Brazil,Canada,Denmark,Finland,India")
	require.NoError(t, err)

	var body struct {
		Correlation struct {
			Columns []string     `json:"columns"`
			Values  [][]*float64 `json:"values"`
		} `json:"correlation"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	require.Len(t, body.Correlation.Columns, 7)
	require.Len(t, body.Correlation.Values, 7)
}

func TestExportPNGAndCSV(t *testing.T) {
	sampleEnv(t)
	dir := t.TempDir()

	png := filepath.Join(dir, "bar.png")
	_, err := run(t, "export", "bar", "-o", png)
	require.NoError(t, err)
	data, err := os.ReadFile(png)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), data[:4])

	csvPath := filepath.Join(dir, "raw.csv")
	_, err = run(t, "export", "csv", "--raw", "-o", csvPath)
	require.NoError(t, err)
	data, err = os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "country,year,rank,score")
}

func TestExportRejectsUnknownChart(t *testing.T) {
	sampleEnv(t)

	_, err := run(t, "export", "radar")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown chart")
}

func TestInvalidFormat(t *testing.T) {
	sampleEnv(t)

	_, err := run(t, "options", "--format", "xml")
	require.Error(t, err)
}

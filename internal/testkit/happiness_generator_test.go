package testkit_test

import (
	"context"
	"math"
	"testing"

	"happydash/adapters/excel"
	"happydash/domain/happiness"
	"happydash/internal/schema"
	"happydash/internal/testkit"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorIsDeterministic(t *testing.T) {
	a := testkit.SampleObservations()
	b := testkit.SampleObservations()
	if diff := cmp.Diff(a, b, cmpopts.EquateNaNs()); diff != "" {
		t.Fatalf("generator output differs (-a +b):\n%s", diff)
	}
	assert.Len(t, a, 10*(2024-2011+1))
}

func TestGeneratorRanksEachYear(t *testing.T) {
	for _, group := range testkit.SampleTable().Filter(yearSelection(2020)).GroupByCountry() {
		for _, r := range group.Rows {
			assert.GreaterOrEqual(t, r.Rank, 1)
			assert.LessOrEqual(t, r.Rank, 10)
			assert.False(t, math.IsNaN(r.Score))
		}
	}
}

func TestCSVDecodesWithBothProfiles(t *testing.T) {
	rows := testkit.SampleObservations()
	registry := schema.DefaultRegistry()

	for name, headers := range map[string][]string{
		schema.ProfileCSV:   testkit.WHRHeaders,
		schema.ProfileSheet: testkit.SheetHeaders,
	} {
		t.Run(name, func(t *testing.T) {
			data, err := excel.NewDataReader(excel.FileTypeCSV, "", nil).ReadBytes(testkit.CSV(headers, rows))
			require.NoError(t, err)

			profile, err := registry.Get(name)
			require.NoError(t, err)
			table, report, err := profile.Decode(data)
			require.NoError(t, err)

			assert.Zero(t, report.Dropped)
			if diff := cmp.Diff(rows, table.Rows(), cmpopts.EquateNaNs(), cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Errorf("decoded rows differ (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSampleSourceHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := testkit.NewSampleSource(testkit.DefaultGeneratorConfig()).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func yearSelection(year int) happiness.Selection {
	return happiness.Selection{Year: year, Countries: testkit.DefaultGeneratorConfig().Countries}
}

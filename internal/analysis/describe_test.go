package analysis_test

import (
	"encoding/json"
	"math"
	"testing"

	"happydash/domain/happiness"
	"happydash/internal/analysis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeColumnQuartiles(t *testing.T) {
	cs := analysis.DescribeColumn(happiness.ColScore, []float64{4, 2, math.NaN(), 1, 3})

	assert.Equal(t, 4, cs.Count)
	assert.InDelta(t, 2.5, float64(cs.Mean), 1e-12)
	assert.InDelta(t, math.Sqrt(5.0/3.0), float64(cs.Std), 1e-12)
	assert.Equal(t, happiness.Number(1), cs.Min)
	assert.InDelta(t, 1.75, float64(cs.Q25), 1e-12)
	assert.InDelta(t, 2.5, float64(cs.Median), 1e-12)
	assert.InDelta(t, 3.25, float64(cs.Q75), 1e-12)
	assert.Equal(t, happiness.Number(4), cs.Max)
	assert.Equal(t, "Happiness score", cs.Label)
}

func TestDescribeColumnEdgeCases(t *testing.T) {
	single := analysis.DescribeColumn(happiness.ColGDP, []float64{1.5})
	assert.Equal(t, 1, single.Count)
	assert.True(t, single.Std.IsNaN(), "sample std of one value is undefined")
	assert.Equal(t, happiness.Number(1.5), single.Q25)

	missing := analysis.DescribeColumn(happiness.ColGDP, []float64{math.NaN(), math.NaN()})
	assert.Equal(t, 0, missing.Count)
	for _, v := range missing.Values()[1:] {
		assert.True(t, v.IsNaN())
	}
}

func TestColumnSummaryCells(t *testing.T) {
	cs := analysis.DescribeColumn(happiness.ColScore, []float64{4, 2, math.NaN(), 1, 3})
	assert.Equal(t, []string{"4", "2.500", "1.291", "1.000", "1.750", "2.500", "3.250", "4.000"}, cs.Cells())

	single := analysis.DescribeColumn(happiness.ColGDP, []float64{1.5})
	cells := single.Cells()
	assert.Equal(t, "1", cells[0])
	assert.Equal(t, happiness.Placeholder, cells[2])
}

func TestDescribeTable(t *testing.T) {
	table := happiness.NewTable([]happiness.Observation{
		{Country: "A", Year: 2023, Rank: 1, Score: 7},
		{Country: "B", Year: 2023, Rank: 2, Score: 6},
	})
	summary := analysis.Describe(table)
	assert.Equal(t, 2, summary.Rows)
	require.Len(t, summary.Columns, len(happiness.NumericColumns()))

	score, ok := summary.Column(happiness.ColScore)
	require.True(t, ok)
	assert.InDelta(t, 6.5, float64(score.Mean), 1e-12)

	data, err := json.Marshal(summary)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"column":"score"`)
}

func TestDescribeEmpty(t *testing.T) {
	summary := analysis.Describe(happiness.NewTable(nil))
	assert.True(t, summary.Empty())

	data, err := json.Marshal(summary)
	require.NoError(t, err)
	assert.JSONEq(t, `{"rows":0,"columns":[]}`, string(data))
}

func TestQuantile(t *testing.T) {
	sorted := []float64{10, 20, 30}
	assert.Equal(t, 10.0, analysis.Quantile(sorted, 0))
	assert.Equal(t, 20.0, analysis.Quantile(sorted, 0.5))
	assert.Equal(t, 25.0, analysis.Quantile(sorted, 0.75))
	assert.Equal(t, 30.0, analysis.Quantile(sorted, 1))
	assert.True(t, math.IsNaN(analysis.Quantile(nil, 0.5)))
}

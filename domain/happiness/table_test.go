package happiness_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"happydash/domain/happiness"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func obs(country string, year, rank int, score float64) happiness.Observation {
	o := happiness.MissingObservation(country, year)
	o.Rank = rank
	o.Score = score
	return o
}

func sampleTable() *happiness.Table {
	return happiness.NewTable([]happiness.Observation{
		obs("Finland", 2022, 1, 7.82),
		obs("Brazil", 2022, 38, 6.12),
		obs("Finland", 2023, 1, 7.74),
		obs("Brazil", 2023, 49, 6.27),
		obs("Chad", 2023, 0, math.NaN()),
		obs("Denmark", 2021, 2, 7.64),
	})
}

func countriesOf(t *happiness.Table) []string {
	out := []string{}
	for _, r := range t.Rows() {
		out = append(out, r.Country)
	}
	return out
}

func TestTableIndexes(t *testing.T) {
	table := sampleTable()

	assert.Equal(t, 6, table.Len())
	assert.Equal(t, []int{2021, 2022, 2023}, table.Years())
	assert.Equal(t, []string{"Brazil", "Chad", "Denmark", "Finland"}, table.Countries())
	assert.Equal(t, 2023, table.LatestYear())
	assert.True(t, table.HasYear(2022))
	assert.False(t, table.HasYear(2019))
	assert.True(t, table.HasCountry("Chad"))
	assert.False(t, table.HasCountry("Atlantis"))
}

func TestNilTable(t *testing.T) {
	var table *happiness.Table
	assert.True(t, table.Empty())
	assert.Equal(t, 0, table.LatestYear())
	assert.True(t, table.Filter(happiness.Selection{Year: 2023, Countries: []string{"Brazil"}}).Empty())
}

func TestFilter(t *testing.T) {
	table := sampleTable()

	got := table.Filter(happiness.Selection{Year: 2023, Countries: []string{"Finland", "Brazil"}})
	// source order, not selection order
	assert.Equal(t, []string{"Finland", "Brazil"}, countriesOf(got))

	for _, r := range got.Rows() {
		assert.Equal(t, 2023, r.Year)
	}

	t.Run("empty country set", func(t *testing.T) {
		assert.True(t, table.Filter(happiness.Selection{Year: 2023}).Empty())
	})

	t.Run("year absent", func(t *testing.T) {
		assert.True(t, table.Filter(happiness.Selection{Year: 1999, Countries: []string{"Finland"}}).Empty())
	})

	t.Run("country absent that year", func(t *testing.T) {
		got := table.Filter(happiness.Selection{Year: 2021, Countries: []string{"Finland", "Denmark"}})
		assert.Equal(t, []string{"Denmark"}, countriesOf(got))
	})

	t.Run("source table untouched", func(t *testing.T) {
		assert.Equal(t, 6, table.Len())
	})
}

func TestHistory(t *testing.T) {
	got := sampleTable().History([]string{"Finland", "Brazil"})

	type key struct {
		Country string
		Year    int
	}
	var keys []key
	for _, r := range got.Rows() {
		keys = append(keys, key{r.Country, r.Year})
	}
	want := []key{{"Brazil", 2022}, {"Brazil", 2023}, {"Finland", 2022}, {"Finland", 2023}}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Errorf("History() mismatch (-want +got):\n%s", diff)
	}
}

func TestHistoryOfAbsentCountry(t *testing.T) {
	table := sampleTable()

	assert.True(t, table.History([]string{"Atlantis"}).Empty())

	mixed := table.History([]string{"Atlantis", "Brazil"})
	require.Equal(t, 2, mixed.Len())
	for _, r := range mixed.Rows() {
		assert.Equal(t, "Brazil", r.Country)
	}
	assert.Equal(t, []string{"Brazil"}, mixed.Countries())

	for _, year := range table.Years() {
		sel := happiness.Selection{Year: year, Countries: []string{"Atlantis"}}
		assert.True(t, table.Filter(sel).Empty(), "year %d", year)
	}
}

func TestGroupByCountry(t *testing.T) {
	groups := sampleTable().GroupByCountry()
	require.Len(t, groups, 4)
	assert.Equal(t, "Brazil", groups[0].Country)
	assert.Len(t, groups[0].Rows, 2)
	assert.Equal(t, "Finland", groups[3].Country)
}

func TestDefaultSelection(t *testing.T) {
	table := sampleTable()

	t.Run("preferred countries present", func(t *testing.T) {
		sel := happiness.DefaultSelection(table, []string{"Brazil", "Atlantis", "Finland", "Brazil"})
		assert.Equal(t, happiness.Selection{Year: 2023, Countries: []string{"Brazil", "Finland"}}, sel)
	})

	t.Run("fallback to first three", func(t *testing.T) {
		sel := happiness.DefaultSelection(table, []string{"Atlantis"})
		assert.Equal(t, []string{"Brazil", "Chad", "Denmark"}, sel.Countries)
	})

	t.Run("empty table", func(t *testing.T) {
		sel := happiness.DefaultSelection(happiness.NewTable(nil), nil)
		assert.Equal(t, 0, sel.Year)
		assert.Empty(t, sel.Countries)
	})
}

func TestObservationValue(t *testing.T) {
	o := obs("Chad", 2023, 0, 4.2)
	o.GDP = 0.5

	assert.True(t, math.IsNaN(o.Value(happiness.ColRank)))
	assert.Equal(t, 4.2, o.Value(happiness.ColScore))
	assert.Equal(t, 0.5, o.Value(happiness.ColGDP))
	assert.Equal(t, 2023.0, o.Value(happiness.ColYear))

	o.SetValue(happiness.ColRank, math.NaN())
	assert.Equal(t, 0, o.Rank)
	o.SetValue(happiness.ColRank, 12)
	assert.Equal(t, 12, o.Rank)
	o.SetValue(happiness.ColFreedom, 0.9)
	assert.Equal(t, 0.9, o.Freedom)
}

func TestCorrelationColumns(t *testing.T) {
	cols := happiness.CorrelationColumns()
	require.Len(t, cols, 7)
	assert.Equal(t, happiness.ColScore, cols[0])
	assert.Equal(t, "Freedom to make life choices", happiness.ColFreedom.Label())
}

func TestObservationJSONNulls(t *testing.T) {
	o := obs("Chad", 2023, 0, math.NaN())
	o.GDP = 1.25

	data, err := json.Marshal(o)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Nil(t, raw["rank"])
	assert.Nil(t, raw["score"])
	assert.Equal(t, 1.25, raw["gdp_per_capita"])
	assert.Equal(t, "Chad", raw["country"])

	var back happiness.Observation
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, 0, back.Rank)
	assert.True(t, math.IsNaN(back.Score))
	assert.True(t, math.IsNaN(back.Freedom))
	assert.Equal(t, 1.25, back.GDP)
}

func TestNumberJSON(t *testing.T) {
	data, err := json.Marshal([]happiness.Number{1.5, happiness.Number(math.NaN()), happiness.Number(math.Inf(1))})
	require.NoError(t, err)
	assert.Equal(t, "[1.5,null,null]", string(data))

	var n happiness.Number
	require.NoError(t, json.Unmarshal([]byte("null"), &n))
	assert.True(t, n.IsNaN())
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "7.740", happiness.FormatNumber(7.74))
	assert.Equal(t, happiness.Placeholder, happiness.FormatNumber(math.NaN()))
	assert.Equal(t, happiness.Placeholder, happiness.FormatNumber(math.Inf(-1)))
	assert.Equal(t, "12", happiness.FormatRank(12))
	assert.Equal(t, happiness.Placeholder, happiness.FormatRank(0))
}

func TestFrame(t *testing.T) {
	df := sampleTable().Filter(happiness.Selection{Year: 2023, Countries: []string{"Finland", "Brazil"}}).Frame()
	assert.Equal(t, 2, df.Nrow())
	assert.Equal(t, "country", df.Names()[0])
	assert.Contains(t, df.Names(), "gdp_per_capita")
	assert.Equal(t, "Finland", df.Col("country").Elem(0).String())
}

func TestFrameWritesMissingAsEmptyCells(t *testing.T) {
	chad := sampleTable().Filter(happiness.Selection{Year: 2023, Countries: []string{"Chad", "Brazil"}})

	var buf bytes.Buffer
	require.NoError(t, chad.Frame().WriteCSV(&buf))
	out := buf.String()
	assert.NotContains(t, out, "NaN")
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	header := records[0]
	require.Equal(t, []string{"country", "year", "rank", "score"}, header[:4])
	assert.Equal(t, []string{"Brazil", "2023", "49", "6.27"}, records[1][:4])
	assert.Equal(t, []string{"Chad", "2023", "", ""}, records[2][:4])
	for _, cell := range records[2][2:] {
		assert.Empty(t, cell)
	}
}

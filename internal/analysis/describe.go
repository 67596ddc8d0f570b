package analysis

import (
	"math"
	"sort"
	"strconv"

	"happydash/domain/happiness"

	"github.com/montanaflynn/stats"
)

// ColumnSummary holds the descriptive statistics of one numeric column
type ColumnSummary struct {
	Column happiness.Column `json:"column"`
	Label  string           `json:"label"`
	Count  int              `json:"count"`
	Mean   happiness.Number `json:"mean"`
	Std    happiness.Number `json:"std"`
	Min    happiness.Number `json:"min"`
	Q25    happiness.Number `json:"q25"`
	Median happiness.Number `json:"median"`
	Q75    happiness.Number `json:"q75"`
	Max    happiness.Number `json:"max"`
}

// Summary is the describe() result of a table
type Summary struct {
	Rows    int             `json:"rows"`
	Columns []ColumnSummary `json:"columns"`
}

// Empty reports whether there is nothing to show
func (s Summary) Empty() bool {
	return len(s.Columns) == 0
}

// Column returns the summary of c
func (s Summary) Column(c happiness.Column) (ColumnSummary, bool) {
	for _, cs := range s.Columns {
		if cs.Column == c {
			return cs, true
		}
	}
	return ColumnSummary{}, false
}

// StatNames lists the summary rows in display order
var StatNames = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// Values returns the statistics of the column in StatNames order
func (cs ColumnSummary) Values() []happiness.Number {
	return []happiness.Number{
		happiness.Number(cs.Count), cs.Mean, cs.Std, cs.Min, cs.Q25, cs.Median, cs.Q75, cs.Max,
	}
}

// Cells formats Values for display: the count as an integer, the rest with three decimals
func (cs ColumnSummary) Cells() []string {
	values := cs.Values()
	cells := make([]string, len(values))
	cells[0] = strconv.Itoa(cs.Count)
	for i := 1; i < len(values); i++ {
		cells[i] = happiness.FormatNumber(float64(values[i]))
	}
	return cells
}

// Describe computes count, mean, sample standard deviation, min, quartiles and max of every
// numeric column. NaN values are ignored. An empty table has no summary rows.
func Describe(t *happiness.Table) Summary {
	summary := Summary{Rows: t.Len(), Columns: []ColumnSummary{}}
	if t.Empty() {
		return summary
	}
	for _, c := range happiness.NumericColumns() {
		summary.Columns = append(summary.Columns, DescribeColumn(c, t.Column(c)))
	}
	return summary
}

// DescribeColumn summarises one column of values
func DescribeColumn(c happiness.Column, values []float64) ColumnSummary {
	data := dropNaN(values)
	cs := ColumnSummary{Column: c, Label: c.Label(), Count: len(data)}

	nan := happiness.Number(math.NaN())
	cs.Mean, cs.Std, cs.Min, cs.Q25, cs.Median, cs.Q75, cs.Max = nan, nan, nan, nan, nan, nan, nan
	if len(data) == 0 {
		return cs
	}

	if mean, err := stats.Mean(data); err == nil {
		cs.Mean = happiness.Number(mean)
	}
	if len(data) > 1 {
		if std, err := stats.StandardDeviationSample(data); err == nil {
			cs.Std = happiness.Number(std)
		}
	}
	if min, err := stats.Min(data); err == nil {
		cs.Min = happiness.Number(min)
	}
	if max, err := stats.Max(data); err == nil {
		cs.Max = happiness.Number(max)
	}
	if median, err := stats.Median(data); err == nil {
		cs.Median = happiness.Number(median)
	}

	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	cs.Q25 = happiness.Number(Quantile(sorted, 0.25))
	cs.Q75 = happiness.Number(Quantile(sorted, 0.75))

	return cs
}

// Quantile returns the p-quantile of sorted data, interpolating linearly between the
// closest ranks (position p*(n-1)). It returns NaN for empty input.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func dropNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

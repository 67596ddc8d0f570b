package analysis

import (
	"encoding/json"
	"math"

	"happydash/domain/happiness"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// CorrelationMatrix is a symmetric Pearson correlation matrix over a fixed column list
type CorrelationMatrix struct {
	Columns []happiness.Column
	values  *mat.SymDense
}

// Correlate computes pairwise Pearson correlations of cols over t. Each pair uses the rows
// where both values are present. Pairs with fewer than two such rows, or where either side
// is constant, are NaN. The diagonal is 1 for columns with a defined variance.
func Correlate(t *happiness.Table, cols []happiness.Column) *CorrelationMatrix {
	m := &CorrelationMatrix{Columns: append([]happiness.Column(nil), cols...)}
	if len(cols) == 0 {
		return m
	}
	m.values = mat.NewSymDense(len(cols), nil)

	data := make([][]float64, len(cols))
	for i, c := range cols {
		data[i] = t.Column(c)
	}

	for i := range cols {
		for j := i; j < len(cols); j++ {
			m.values.SetSym(i, j, pairwise(data[i], data[j], i == j))
		}
	}
	return m
}

// pairwise correlates the complete pairs of x and y
func pairwise(x, y []float64, diagonal bool) float64 {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for k := range x {
		if math.IsNaN(x[k]) || math.IsNaN(y[k]) {
			continue
		}
		xs = append(xs, x[k])
		ys = append(ys, y[k])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	if stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return math.NaN()
	}
	if diagonal {
		return 1
	}
	r := stat.Correlation(xs, ys, nil)
	// rounding can push |r| marginally past 1
	return math.Max(-1, math.Min(1, r))
}

// Size returns the number of columns
func (m *CorrelationMatrix) Size() int {
	return len(m.Columns)
}

// At returns the correlation of columns i and j
func (m *CorrelationMatrix) At(i, j int) float64 {
	return m.values.At(i, j)
}

// Get returns the correlation between two named columns
func (m *CorrelationMatrix) Get(a, b happiness.Column) (float64, bool) {
	i, j := m.index(a), m.index(b)
	if i < 0 || j < 0 {
		return math.NaN(), false
	}
	return m.At(i, j), true
}

func (m *CorrelationMatrix) index(c happiness.Column) int {
	for i, col := range m.Columns {
		if col == c {
			return i
		}
	}
	return -1
}

// Labels returns the display labels of the columns
func (m *CorrelationMatrix) Labels() []string {
	labels := make([]string, len(m.Columns))
	for i, c := range m.Columns {
		labels[i] = c.Label()
	}
	return labels
}

// Rows returns the matrix as nested rows
func (m *CorrelationMatrix) Rows() [][]happiness.Number {
	n := m.Size()
	rows := make([][]happiness.Number, n)
	for i := 0; i < n; i++ {
		rows[i] = make([]happiness.Number, n)
		for j := 0; j < n; j++ {
			rows[i][j] = happiness.Number(m.At(i, j))
		}
	}
	return rows
}

// MarshalJSON encodes columns, labels and values; NaN becomes null
func (m *CorrelationMatrix) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Columns []happiness.Column   `json:"columns"`
		Labels  []string             `json:"labels"`
		Values  [][]happiness.Number `json:"values"`
	}{
		Columns: m.Columns,
		Labels:  m.Labels(),
		Values:  m.Rows(),
	})
}

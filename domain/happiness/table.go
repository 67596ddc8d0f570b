package happiness

import (
	"math"
	"sort"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Table is an immutable collection of observations.
// The raw table is loaded once and shared by pointer; every derived table is a new value.
type Table struct {
	rows      []Observation
	years     []int
	countries []string
}

// NewTable builds a table over rows. The slice is copied.
func NewTable(rows []Observation) *Table {
	owned := make([]Observation, len(rows))
	copy(owned, rows)

	yearSet := make(map[int]struct{})
	countrySet := make(map[string]struct{})
	for _, r := range owned {
		yearSet[r.Year] = struct{}{}
		countrySet[r.Country] = struct{}{}
	}

	years := make([]int, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}
	sort.Ints(years)

	countries := make([]string, 0, len(countrySet))
	for c := range countrySet {
		countries = append(countries, c)
	}
	sort.Strings(countries)

	return &Table{rows: owned, years: years, countries: countries}
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Empty reports whether the table has no rows
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// Rows returns a copy of the rows
func (t *Table) Rows() []Observation {
	if t == nil {
		return nil
	}
	out := make([]Observation, len(t.rows))
	copy(out, t.rows)
	return out
}

// Years returns the sorted distinct years
func (t *Table) Years() []int {
	if t == nil {
		return nil
	}
	return append([]int(nil), t.years...)
}

// Countries returns the sorted distinct country names
func (t *Table) Countries() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.countries...)
}

// LatestYear returns the largest year, or 0 for an empty table
func (t *Table) LatestYear() int {
	if t == nil || len(t.years) == 0 {
		return 0
	}
	return t.years[len(t.years)-1]
}

// HasYear reports whether any row carries year
func (t *Table) HasYear(year int) bool {
	if t == nil {
		return false
	}
	i := sort.SearchInts(t.years, year)
	return i < len(t.years) && t.years[i] == year
}

// HasCountry reports whether any row carries country
func (t *Table) HasCountry(country string) bool {
	if t == nil {
		return false
	}
	i := sort.SearchStrings(t.countries, country)
	return i < len(t.countries) && t.countries[i] == country
}

// Filter returns the rows whose country is in sel.Countries and whose year equals sel.Year.
// Source order is kept. An empty country set yields an empty table.
func (t *Table) Filter(sel Selection) *Table {
	if t == nil {
		return NewTable(nil)
	}
	wanted := sel.countrySet()
	out := make([]Observation, 0, len(sel.Countries))
	for _, r := range t.rows {
		if r.Year != sel.Year {
			continue
		}
		if _, ok := wanted[r.Country]; ok {
			out = append(out, r)
		}
	}
	return NewTable(out)
}

// History returns every year of the given countries, ordered by country then year
func (t *Table) History(countries []string) *Table {
	if t == nil {
		return NewTable(nil)
	}
	wanted := Selection{Countries: countries}.countrySet()
	out := make([]Observation, 0)
	for _, r := range t.rows {
		if _, ok := wanted[r.Country]; ok {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Country != out[j].Country {
			return out[i].Country < out[j].Country
		}
		return out[i].Year < out[j].Year
	})
	return NewTable(out)
}

// Column returns the values of c in row order, NaN included
func (t *Table) Column(c Column) []float64 {
	if t == nil {
		return nil
	}
	values := make([]float64, len(t.rows))
	for i, r := range t.rows {
		values[i] = r.Value(c)
	}
	return values
}

// GroupByCountry splits the rows per country, keeping row order inside each group.
// Groups are returned in sorted country order.
func (t *Table) GroupByCountry() []CountryRows {
	if t == nil {
		return nil
	}
	index := make(map[string]int)
	groups := make([]CountryRows, 0)
	for _, r := range t.rows {
		i, ok := index[r.Country]
		if !ok {
			i = len(groups)
			index[r.Country] = i
			groups = append(groups, CountryRows{Country: r.Country})
		}
		groups[i].Rows = append(groups[i].Rows, r)
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Country < groups[j].Country })
	return groups
}

// CountryRows holds the rows of a single country
type CountryRows struct {
	Country string
	Rows    []Observation
}

// Frame converts the table into a dataframe with one column per field, ready for CSV
// export. Missing values (NaN, infinities, rank 0) are empty cells.
func (t *Table) Frame() dataframe.DataFrame {
	rows := t.Rows()
	countries := make([]string, len(rows))
	years := make([]int, len(rows))
	for i, r := range rows {
		countries[i] = r.Country
		years[i] = r.Year
	}

	cols := []series.Series{
		series.New(countries, series.String, "country"),
		series.New(years, series.Int, string(ColYear)),
	}
	for _, c := range NumericColumns() {
		if c == ColYear {
			continue
		}
		cells := make([]string, len(rows))
		for i, r := range rows {
			cells[i] = formatCell(r.Value(c))
		}
		cols = append(cols, series.New(cells, series.String, string(c)))
	}
	return dataframe.New(cols...)
}

func formatCell(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

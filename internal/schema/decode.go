package schema

import (
	"fmt"
	"math"
	"strings"

	"happydash/adapters/excel"
	"happydash/domain/happiness"
	"happydash/internal/errors"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var nanValues = []string{"", "NA", "N/A", "NaN", "nan", "null"}

// Report summarises one decode
type Report struct {
	Rows            int      `json:"rows"`
	Dropped         int      `json:"dropped"`
	MissingOptional []string `json:"missing_optional,omitempty"`
}

// Decode maps the sheet onto observations according to the profile.
// A missing required column is a schema mismatch. Rows without a country or an integral
// year are dropped and counted in the report.
func (p Profile) Decode(data *excel.ExcelData) (*happiness.Table, Report, error) {
	var report Report
	if data == nil || len(data.Rows) == 0 {
		return nil, report, errors.SchemaMismatch("source has no data rows")
	}

	indexes, missing, err := p.resolve(data.Headers)
	if err != nil {
		return nil, report, err
	}
	report.MissingOptional = missing

	records := data.Records()
	if p.DecimalComma {
		records = normaliseDecimals(records, indexes)
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nanValues),
	)
	if df.Err != nil {
		return nil, report, errors.SchemaMismatch(fmt.Sprintf("failed to build data frame: %v", df.Err))
	}
	names := df.Names()

	countries := df.Col(names[indexes[CountryField]]).Records()
	numeric := make(map[happiness.Column][]float64)
	for column, idx := range indexes {
		if column == CountryField {
			continue
		}
		numeric[happiness.Column(column)] = df.Col(names[idx]).Float()
	}

	years := numeric[happiness.ColYear]
	rows := make([]happiness.Observation, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		country := strings.TrimSpace(countries[i])
		year := years[i]
		if country == "" || country == "NaN" || math.IsNaN(year) || year != math.Trunc(year) {
			report.Dropped++
			continue
		}

		obs := happiness.MissingObservation(country, int(year))
		for column, values := range numeric {
			if column == happiness.ColYear {
				continue
			}
			obs.SetValue(column, values[i])
		}
		rows = append(rows, obs)
	}
	report.Rows = len(rows)

	return happiness.NewTable(rows), report, nil
}

// resolve finds the source column index of every mapped field.
// Optional fields that cannot be found are returned in missing.
func (p Profile) resolve(headers []string) (map[string]int, []string, error) {
	byHeader := make(map[string]int, len(headers))
	for i, h := range headers {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := byHeader[key]; !dup {
			byHeader[key] = i
		}
	}

	indexes := make(map[string]int, len(p.Fields))
	var missing []string
	for _, f := range p.Fields {
		idx := -1
		switch p.By {
		case ByName:
			for _, alias := range f.Headers {
				if i, ok := byHeader[strings.ToLower(alias)]; ok {
					idx = i
					break
				}
			}
		case ByPosition:
			if f.Position < len(headers) {
				idx = f.Position
			}
		}

		if idx < 0 {
			if f.Required {
				return nil, nil, errors.SchemaMismatch(fmt.Sprintf(
					"profile %s: required column %q not found (have %d columns: %s)",
					p.Name, f.Column, len(headers), strings.Join(headers, ", ")))
			}
			missing = append(missing, f.Column)
			continue
		}
		indexes[f.Column] = idx
	}
	return indexes, missing, nil
}

// normaliseDecimals rewrites "7,25" as "7.25" in the numeric columns
func normaliseDecimals(records [][]string, indexes map[string]int) [][]string {
	out := make([][]string, len(records))
	out[0] = records[0]
	for i := 1; i < len(records); i++ {
		row := append([]string(nil), records[i]...)
		for column, idx := range indexes {
			if column == CountryField {
				continue
			}
			row[idx] = strings.ReplaceAll(row[idx], ",", ".")
		}
		out[i] = row
	}
	return out
}

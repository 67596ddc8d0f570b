package testkit

import (
	"bytes"
	"context"
	"encoding/csv"
	"math"
	"strconv"

	"happydash/domain/happiness"
)

// SampleLocation is the cache key of the synthetic source
const SampleLocation = "sample://world-happiness"

// WHRHeaders is the header row of the World Happiness Report CSV layout
var WHRHeaders = []string{
	"year", "Rank", "Country name", "Life Ladder", "upperwhisker", "lowerwhisker",
	"Explained by: Log GDP per capita", "Explained by: Social support",
	"Explained by: Healthy life expectancy", "Explained by: Freedom to make life choices",
	"Explained by: Generosity", "Explained by: Perceptions of corruption", "Dystopia + residual",
}

// SheetHeaders is the header row of the translated spreadsheet layout
var SheetHeaders = []string{
	"Ano", "Ranking", "País", "Pontuação da Escada", "Limite Superior", "Limite Inferior",
	"PIB per capita", "Apoio Social", "Expectativa de Vida Saudável",
	"Liberdade de Escolha", "Generosidade", "Percepção de Corrupção", "Distopia + Resíduo",
}

// SampleObservations returns the deterministic synthetic dataset
func SampleObservations() []happiness.Observation {
	return NewHappinessGenerator(DefaultGeneratorConfig()).Generate()
}

// SampleTable returns the synthetic dataset as a table
func SampleTable() *happiness.Table {
	return happiness.NewTable(SampleObservations())
}

// SampleSource serves the synthetic dataset through the table source port
type SampleSource struct {
	config GeneratorConfig
}

// NewSampleSource creates a source over the generator configuration
func NewSampleSource(config GeneratorConfig) *SampleSource {
	return &SampleSource{config: config}
}

// Location implements ports.TableSource
func (s *SampleSource) Location() string {
	return SampleLocation
}

// Load implements ports.TableSource
func (s *SampleSource) Load(ctx context.Context) (*happiness.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return happiness.NewTable(NewHappinessGenerator(s.config).Generate()), nil
}

// Records renders observations in the WHR column order, headers first
func Records(headers []string, rows []happiness.Observation) [][]string {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, append([]string(nil), headers...))
	for _, o := range rows {
		rank := ""
		if o.Rank != 0 {
			rank = strconv.Itoa(o.Rank)
		}
		records = append(records, []string{
			strconv.Itoa(o.Year), rank, o.Country,
			formatFloat(o.Score), formatFloat(o.UpperWhisker), formatFloat(o.LowerWhisker),
			formatFloat(o.GDP), formatFloat(o.Social), formatFloat(o.Health),
			formatFloat(o.Freedom), formatFloat(o.Generosity), formatFloat(o.Corruption),
			formatFloat(o.Residual),
		})
	}
	return records
}

// CSV renders observations as CSV bytes
func CSV(headers []string, rows []happiness.Observation) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.WriteAll(Records(headers, rows))
	return buf.Bytes()
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

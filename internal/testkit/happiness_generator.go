package testkit

import (
	"math"
	"math/rand"

	"happydash/domain/happiness"
)

// GeneratorConfig configures the synthetic happiness data generator
type GeneratorConfig struct {
	Countries   []string `json:"countries"`
	StartYear   int      `json:"start_year"`
	EndYear     int      `json:"end_year"`
	MissingRate float64  `json:"missing_rate"`
	Seed        int64    `json:"seed"`
}

// DefaultGeneratorConfig returns the configuration behind the sample dataset
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Countries: []string{
			"Brazil", "Canada", "Denmark", "Finland", "India",
			"Japan", "Kenya", "Mexico", "New Zealand", "United States",
		},
		StartYear:   2011,
		EndYear:     2024,
		MissingRate: 0.03,
		Seed:        42,
	}
}

// HappinessGenerator produces World Happiness Report shaped observations
type HappinessGenerator struct {
	config GeneratorConfig
	rng    *rand.Rand
}

// NewHappinessGenerator creates a generator; equal configs produce equal data
func NewHappinessGenerator(config GeneratorConfig) *HappinessGenerator {
	return &HappinessGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate returns one observation per (country, year), ranked within each year
func (g *HappinessGenerator) Generate() []happiness.Observation {
	base := make(map[string]float64, len(g.config.Countries))
	for i, c := range g.config.Countries {
		// spread countries over a plausible ladder range
		base[c] = 4.0 + 3.5*float64(i%7)/6 + g.rng.Float64()*0.4
	}

	var out []happiness.Observation
	for year := g.config.StartYear; year <= g.config.EndYear; year++ {
		yearRows := make([]happiness.Observation, 0, len(g.config.Countries))
		for _, c := range g.config.Countries {
			yearRows = append(yearRows, g.observation(c, year, base[c]))
		}
		rankByScore(yearRows)
		out = append(out, yearRows...)
	}
	return out
}

func (g *HappinessGenerator) observation(country string, year int, base float64) happiness.Observation {
	drift := 0.02 * float64(year-g.config.StartYear)
	score := base + drift + g.rng.NormFloat64()*0.15
	spread := 0.08 + g.rng.Float64()*0.05

	o := happiness.Observation{
		Country:      country,
		Year:         year,
		Score:        round3(score),
		UpperWhisker: round3(score + spread),
		LowerWhisker: round3(score - spread),
		GDP:          round3(score*0.22 + g.rng.Float64()*0.3),
		Social:       round3(score*0.15 + g.rng.Float64()*0.25),
		Health:       round3(score*0.08 + g.rng.Float64()*0.2),
		Freedom:      round3(0.3 + g.rng.Float64()*0.5),
		Generosity:   round3(g.rng.Float64() * 0.3),
		Corruption:   round3(0.05 + g.rng.Float64()*0.4),
	}
	explained := o.GDP + o.Social + o.Health + o.Freedom + o.Generosity + o.Corruption
	o.Residual = round3(score - explained)

	for _, c := range happiness.Indicators() {
		if g.rng.Float64() < g.config.MissingRate {
			o.SetValue(c, math.NaN())
		}
	}
	return o
}

func rankByScore(rows []happiness.Observation) {
	for i := range rows {
		rank := 1
		for j := range rows {
			if rows[j].Score > rows[i].Score {
				rank++
			}
		}
		rows[i].Rank = rank
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

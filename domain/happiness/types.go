package happiness

import "math"

// Observation is one (country, year) row of the World Happiness Report data
type Observation struct {
	Country      string  `json:"country" db:"country"`
	Year         int     `json:"year" db:"year"`
	Rank         int     `json:"rank" db:"rank"`
	Score        float64 `json:"score" db:"score"`
	UpperWhisker float64 `json:"upper_whisker" db:"upper_whisker"`
	LowerWhisker float64 `json:"lower_whisker" db:"lower_whisker"`
	GDP          float64 `json:"gdp_per_capita" db:"gdp_per_capita"`
	Social       float64 `json:"social_support" db:"social_support"`
	Health       float64 `json:"healthy_life_expectancy" db:"healthy_life_expectancy"`
	Freedom      float64 `json:"freedom" db:"freedom"`
	Generosity   float64 `json:"generosity" db:"generosity"`
	Corruption   float64 `json:"corruption" db:"corruption"`
	Residual     float64 `json:"residual" db:"residual"`
}

// Column identifies a numeric field of an Observation
type Column string

const (
	ColYear         Column = "year"
	ColRank         Column = "rank"
	ColScore        Column = "score"
	ColUpperWhisker Column = "upper_whisker"
	ColLowerWhisker Column = "lower_whisker"
	ColGDP          Column = "gdp_per_capita"
	ColSocial       Column = "social_support"
	ColHealth       Column = "healthy_life_expectancy"
	ColFreedom      Column = "freedom"
	ColGenerosity   Column = "generosity"
	ColCorruption   Column = "corruption"
	ColResidual     Column = "residual"
)

var columnLabels = map[Column]string{
	ColYear:         "Year",
	ColRank:         "Rank",
	ColScore:        "Happiness score",
	ColUpperWhisker: "Upper whisker",
	ColLowerWhisker: "Lower whisker",
	ColGDP:          "GDP per capita",
	ColSocial:       "Social support",
	ColHealth:       "Healthy life expectancy",
	ColFreedom:      "Freedom to make life choices",
	ColGenerosity:   "Generosity",
	ColCorruption:   "Perceptions of corruption",
	ColResidual:     "Dystopia + residual",
}

// Label returns the display label of the column
func (c Column) Label() string {
	if label, ok := columnLabels[c]; ok {
		return label
	}
	return string(c)
}

// NumericColumns lists every numeric column in source order
func NumericColumns() []Column {
	return []Column{
		ColYear, ColRank, ColScore, ColUpperWhisker, ColLowerWhisker,
		ColGDP, ColSocial, ColHealth, ColFreedom, ColGenerosity, ColCorruption,
		ColResidual,
	}
}

// Indicators lists the six explanatory indicators
func Indicators() []Column {
	return []Column{ColGDP, ColSocial, ColHealth, ColFreedom, ColGenerosity, ColCorruption}
}

// CorrelationColumns is the fixed subset the correlation matrix is computed over
func CorrelationColumns() []Column {
	return append([]Column{ColScore}, Indicators()...)
}

// Value returns the numeric value of column c. Rank 0 is reported as NaN.
func (o Observation) Value(c Column) float64 {
	switch c {
	case ColYear:
		return float64(o.Year)
	case ColRank:
		if o.Rank == 0 {
			return math.NaN()
		}
		return float64(o.Rank)
	case ColScore:
		return o.Score
	case ColUpperWhisker:
		return o.UpperWhisker
	case ColLowerWhisker:
		return o.LowerWhisker
	case ColGDP:
		return o.GDP
	case ColSocial:
		return o.Social
	case ColHealth:
		return o.Health
	case ColFreedom:
		return o.Freedom
	case ColGenerosity:
		return o.Generosity
	case ColCorruption:
		return o.Corruption
	case ColResidual:
		return o.Residual
	default:
		return math.NaN()
	}
}

// SetValue assigns v to column c. Year and Rank are truncated; NaN rank becomes 0.
func (o *Observation) SetValue(c Column, v float64) {
	switch c {
	case ColYear:
		o.Year = int(v)
	case ColRank:
		if math.IsNaN(v) {
			o.Rank = 0
			return
		}
		o.Rank = int(v)
	case ColScore:
		o.Score = v
	case ColUpperWhisker:
		o.UpperWhisker = v
	case ColLowerWhisker:
		o.LowerWhisker = v
	case ColGDP:
		o.GDP = v
	case ColSocial:
		o.Social = v
	case ColHealth:
		o.Health = v
	case ColFreedom:
		o.Freedom = v
	case ColGenerosity:
		o.Generosity = v
	case ColCorruption:
		o.Corruption = v
	case ColResidual:
		o.Residual = v
	}
}

// MissingObservation returns an observation with every float field set to NaN
func MissingObservation(country string, year int) Observation {
	nan := math.NaN()
	return Observation{
		Country:      country,
		Year:         year,
		Score:        nan,
		UpperWhisker: nan,
		LowerWhisker: nan,
		GDP:          nan,
		Social:       nan,
		Health:       nan,
		Freedom:      nan,
		Generosity:   nan,
		Corruption:   nan,
		Residual:     nan,
	}
}

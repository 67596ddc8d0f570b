package happiness

import (
	"encoding/json"
	"math"
	"strconv"
)

// Number is a float64 that marshals NaN and infinities as JSON null
type Number float64

// MarshalJSON implements json.Marshaler
func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

// UnmarshalJSON implements json.Unmarshaler; null decodes as NaN
func (n *Number) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = Number(math.NaN())
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// Numbers converts a float slice
func Numbers(values []float64) []Number {
	out := make([]Number, len(values))
	for i, v := range values {
		out[i] = Number(v)
	}
	return out
}

// IsNaN reports whether the value is missing
func (n Number) IsNaN() bool {
	return math.IsNaN(float64(n))
}

// observationJSON is the wire form of Observation
type observationJSON struct {
	Country      string `json:"country"`
	Year         int    `json:"year"`
	Rank         *int   `json:"rank"`
	Score        Number `json:"score"`
	UpperWhisker Number `json:"upper_whisker"`
	LowerWhisker Number `json:"lower_whisker"`
	GDP          Number `json:"gdp_per_capita"`
	Social       Number `json:"social_support"`
	Health       Number `json:"healthy_life_expectancy"`
	Freedom      Number `json:"freedom"`
	Generosity   Number `json:"generosity"`
	Corruption   Number `json:"corruption"`
	Residual     Number `json:"residual"`
}

// MarshalJSON writes missing values, including a missing rank, as null
func (o Observation) MarshalJSON() ([]byte, error) {
	w := observationJSON{
		Country:      o.Country,
		Year:         o.Year,
		Score:        Number(o.Score),
		UpperWhisker: Number(o.UpperWhisker),
		LowerWhisker: Number(o.LowerWhisker),
		GDP:          Number(o.GDP),
		Social:       Number(o.Social),
		Health:       Number(o.Health),
		Freedom:      Number(o.Freedom),
		Generosity:   Number(o.Generosity),
		Corruption:   Number(o.Corruption),
		Residual:     Number(o.Residual),
	}
	if o.Rank != 0 {
		rank := o.Rank
		w.Rank = &rank
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads the form written by MarshalJSON
func (o *Observation) UnmarshalJSON(data []byte) error {
	nan := Number(math.NaN())
	w := observationJSON{
		Score: nan, UpperWhisker: nan, LowerWhisker: nan, GDP: nan, Social: nan,
		Health: nan, Freedom: nan, Generosity: nan, Corruption: nan, Residual: nan,
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*o = Observation{
		Country:      w.Country,
		Year:         w.Year,
		Score:        float64(w.Score),
		UpperWhisker: float64(w.UpperWhisker),
		LowerWhisker: float64(w.LowerWhisker),
		GDP:          float64(w.GDP),
		Social:       float64(w.Social),
		Health:       float64(w.Health),
		Freedom:      float64(w.Freedom),
		Generosity:   float64(w.Generosity),
		Corruption:   float64(w.Corruption),
		Residual:     float64(w.Residual),
	}
	if w.Rank != nil {
		o.Rank = *w.Rank
	}
	return nil
}

// Placeholder stands in for a missing value in tables meant for people
const Placeholder = "—"

// FormatNumber prints v with three decimals, or the placeholder when it is missing
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Placeholder
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// FormatRank prints a rank, or the placeholder for rank 0
func FormatRank(rank int) string {
	if rank <= 0 {
		return Placeholder
	}
	return strconv.Itoa(rank)
}

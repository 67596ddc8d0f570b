package charts

import "sort"

// qualitative colours, plotly's default sequence followed by its "Dark24" tail
var defaultColors = []string{
	"#636EFA", "#EF553B", "#00CC96", "#AB63FA", "#FFA15A",
	"#19D3F3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
	"#2E91E5", "#E15F99", "#1CA71C", "#FB0D0D", "#DA16FF",
	"#222A2A", "#B68100", "#750D86", "#EB663B", "#511CFB",
}

// Palette gives every country a fixed colour derived from its position in the
// sorted country list of the raw table, so colours survive selection changes.
type Palette struct {
	index map[string]int
}

// NewPalette builds a palette over the known countries
func NewPalette(countries []string) *Palette {
	sorted := append([]string(nil), countries...)
	sort.Strings(sorted)
	index := make(map[string]int, len(sorted))
	for i, c := range sorted {
		if _, dup := index[c]; !dup {
			index[c] = i
		}
	}
	return &Palette{index: index}
}

// Color returns the colour of country. Unknown countries fall back to a stable hash.
func (p *Palette) Color(country string) string {
	if p != nil {
		if i, ok := p.index[country]; ok {
			return defaultColors[i%len(defaultColors)]
		}
	}
	var h uint32 = 2166136261
	for i := 0; i < len(country); i++ {
		h ^= uint32(country[i])
		h *= 16777619
	}
	return defaultColors[int(h%uint32(len(defaultColors)))]
}

// SeriesColor returns the i-th colour of the sequence, for non-country series
func SeriesColor(i int) string {
	return defaultColors[i%len(defaultColors)]
}

package happiness

// Selection is the year and country constraints of one dashboard interaction
type Selection struct {
	Year      int      `json:"year"`
	Countries []string `json:"countries"`
}

func (s Selection) countrySet() map[string]struct{} {
	set := make(map[string]struct{}, len(s.Countries))
	for _, c := range s.Countries {
		set[c] = struct{}{}
	}
	return set
}

// Contains reports whether country is selected
func (s Selection) Contains(country string) bool {
	for _, c := range s.Countries {
		if c == country {
			return true
		}
	}
	return false
}

// DefaultSelection picks the latest year and the preferred countries present in t.
// When none of the preferred countries exist, the first (up to) three countries are used.
func DefaultSelection(t *Table, preferred []string) Selection {
	sel := Selection{Year: t.LatestYear(), Countries: []string{}}
	for _, c := range preferred {
		if t.HasCountry(c) && !sel.Contains(c) {
			sel.Countries = append(sel.Countries, c)
		}
	}
	if len(sel.Countries) > 0 {
		return sel
	}
	countries := t.Countries()
	if len(countries) > 3 {
		countries = countries[:3]
	}
	sel.Countries = append(sel.Countries, countries...)
	return sel
}

// Package charts maps happiness tables to declarative plotly figures.
package charts

import (
	"fmt"

	grob "github.com/MetalBlueberry/go-plotly/graph_objects"
)

// Kind identifies one of the dashboard charts
type Kind string

const (
	KindBar       Kind = "bar"
	KindLine      Kind = "line"
	KindRadar     Kind = "radar"
	KindBox       Kind = "box"
	KindScatter   Kind = "scatter"
	KindScatter3D Kind = "scatter3d"
	KindHeatmap   Kind = "heatmap"
)

// Kinds lists every chart in page order
func Kinds() []Kind {
	return []Kind{KindBar, KindLine, KindRadar, KindBox, KindScatter, KindScatter3D, KindHeatmap}
}

// ParseKind validates a chart name
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// NoDataText is shown on charts without traces
const NoDataText = "No data for the current selection"

// Figure is a plotly figure tagged with the page slot it renders into
type Figure struct {
	ID     string       `json:"id"`
	Kind   Kind         `json:"kind"`
	Data   grob.Traces  `json:"data"`
	Layout *grob.Layout `json:"layout"`
}

// Empty reports whether the figure has no traces
func (f Figure) Empty() bool {
	return len(f.Data) == 0
}

// Title returns the layout title text
func (f Figure) Title() string {
	if f.Layout == nil || f.Layout.Title == nil || f.Layout.Title.Text == nil {
		return ""
	}
	return fmt.Sprint(f.Layout.Title.Text)
}

// Annotation is a floating text label
type Annotation struct {
	Text      string  `json:"text"`
	XRef      string  `json:"xref"`
	YRef      string  `json:"yref"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	ShowArrow bool    `json:"showarrow"`
}

func noDataAnnotation() []Annotation {
	return []Annotation{{
		Text: NoDataText, XRef: "paper", YRef: "paper", X: 0.5, Y: 0.5, ShowArrow: false,
	}}
}

func title(text string) *grob.LayoutTitle {
	return &grob.LayoutTitle{Text: grob.String(text)}
}

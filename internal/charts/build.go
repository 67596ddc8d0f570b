package charts

import (
	"fmt"

	"happydash/domain/happiness"
	"happydash/internal/analysis"

	grob "github.com/MetalBlueberry/go-plotly/graph_objects"
)

// Input is everything the charts are drawn from
type Input struct {
	Selection   happiness.Selection
	Filtered    *happiness.Table
	History     *happiness.Table
	Correlation *analysis.CorrelationMatrix
	Palette     *Palette
}

// BuildAll returns every chart in page order
func BuildAll(in Input) []Figure {
	figures := make([]Figure, 0, len(Kinds()))
	for _, k := range Kinds() {
		figures = append(figures, Build(k, in))
	}
	return figures
}

// Build returns the figure of one chart kind. Charts without data carry an annotation
// instead of traces.
func Build(kind Kind, in Input) Figure {
	var fig Figure
	switch kind {
	case KindBar:
		fig = barChart(in)
	case KindLine:
		fig = lineChart(in)
	case KindRadar:
		fig = radarChart(in)
	case KindBox:
		fig = boxChart(in)
	case KindScatter:
		fig = scatterChart(in)
	case KindScatter3D:
		fig = scatter3DChart(in)
	case KindHeatmap:
		fig = heatmapChart(in)
	default:
		fig = Figure{Layout: &grob.Layout{Title: title(string(kind))}}
	}
	fig.ID = "chart-" + string(kind)
	fig.Kind = kind
	if fig.Data == nil {
		fig.Data = grob.Traces{}
	}
	if fig.Empty() {
		fig.Layout.Annotations = noDataAnnotation()
	}
	return fig
}

func axis(text string) *grob.LayoutXaxis {
	return &grob.LayoutXaxis{Title: &grob.LayoutXaxisTitle{Text: grob.String(text)}}
}

func yaxis(text string) *grob.LayoutYaxis {
	return &grob.LayoutYaxis{Title: &grob.LayoutYaxisTitle{Text: grob.String(text)}}
}

func barChart(in Input) Figure {
	fig := Figure{Layout: &grob.Layout{
		Title: title(fmt.Sprintf("Happiness score in %d", in.Selection.Year)),
		Xaxis: axis("Country"),
		Yaxis: yaxis(happiness.ColScore.Label()),
	}}
	for _, group := range in.Filtered.GroupByCountry() {
		names := make([]string, len(group.Rows))
		scores := make([]happiness.Number, len(group.Rows))
		for i, r := range group.Rows {
			names[i] = r.Country
			scores[i] = happiness.Number(r.Score)
		}
		fig.Data = append(fig.Data, &grob.Bar{
			Type:   grob.TraceTypeBar,
			Name:   grob.String(group.Country),
			X:      names,
			Y:      scores,
			Marker: &grob.BarMarker{Color: grob.Color(in.Palette.Color(group.Country))},
		})
	}
	return fig
}

func lineChart(in Input) Figure {
	x := axis("Year")
	x.Dtick = 1
	fig := Figure{Layout: &grob.Layout{
		Title: title("Historical happiness score"),
		Xaxis: x,
		Yaxis: yaxis(happiness.ColScore.Label()),
	}}
	for _, group := range in.History.GroupByCountry() {
		years := make([]int, len(group.Rows))
		scores := make([]happiness.Number, len(group.Rows))
		for i, r := range group.Rows {
			years[i] = r.Year
			scores[i] = happiness.Number(r.Score)
		}
		color := grob.Color(in.Palette.Color(group.Country))
		fig.Data = append(fig.Data, &grob.Scatter{
			Type:   grob.TraceTypeScatter,
			Mode:   grob.ScatterMode("lines+markers"),
			Name:   grob.String(group.Country),
			X:      years,
			Y:      scores,
			Line:   &grob.ScatterLine{Color: color},
			Marker: &grob.ScatterMarker{Color: color},
		})
	}
	return fig
}

func radarChart(in Input) Figure {
	fig := Figure{Layout: &grob.Layout{
		Title: title(fmt.Sprintf("Happiness factors in %d", in.Selection.Year)),
	}}
	indicators := happiness.Indicators()
	theta := make([]string, 0, len(indicators)+1)
	for _, c := range indicators {
		theta = append(theta, c.Label())
	}
	theta = append(theta, theta[0])

	for _, group := range in.Filtered.GroupByCountry() {
		for _, r := range group.Rows {
			values := make([]happiness.Number, 0, len(theta))
			for _, c := range indicators {
				values = append(values, happiness.Number(r.Value(c)))
			}
			values = append(values, values[0])
			color := grob.Color(in.Palette.Color(r.Country))
			fig.Data = append(fig.Data, &grob.Scatterpolar{
				Type:   grob.TraceTypeScatterpolar,
				Name:   grob.String(r.Country),
				R:      values,
				Theta:  theta,
				Fill:   grob.ScatterpolarFill("toself"),
				Line:   &grob.ScatterpolarLine{Color: color},
				Marker: &grob.ScatterpolarMarker{Color: color},
			})
		}
	}
	return fig
}

func boxChart(in Input) Figure {
	fig := Figure{Layout: &grob.Layout{
		Title: title(fmt.Sprintf("Distribution of happiness factors in %d", in.Selection.Year)),
		Yaxis: yaxis("Contribution"),
	}}
	if in.Filtered.Empty() {
		return fig
	}
	for i, c := range happiness.Indicators() {
		fig.Data = append(fig.Data, &grob.Box{
			Type:      grob.TraceTypeBox,
			Name:      grob.String(c.Label()),
			Y:         happiness.Numbers(in.Filtered.Column(c)),
			Boxpoints: grob.BoxBoxpoints("all"),
			Marker:    &grob.BoxMarker{Color: grob.Color(SeriesColor(i))},
		})
	}
	return fig
}

func scatterChart(in Input) Figure {
	fig := Figure{Layout: &grob.Layout{
		Title: title(fmt.Sprintf("GDP per capita vs happiness score in %d", in.Selection.Year)),
		Xaxis: axis(happiness.ColGDP.Label()),
		Yaxis: yaxis(happiness.ColScore.Label()),
	}}
	for _, group := range in.Filtered.GroupByCountry() {
		x := make([]happiness.Number, len(group.Rows))
		y := make([]happiness.Number, len(group.Rows))
		for i, r := range group.Rows {
			x[i] = happiness.Number(r.GDP)
			y[i] = happiness.Number(r.Score)
		}
		fig.Data = append(fig.Data, &grob.Scatter{
			Type:          grob.TraceTypeScatter,
			Mode:          grob.ScatterMode("markers"),
			Name:          grob.String(group.Country),
			X:             x,
			Y:             y,
			Hovertemplate: grob.String(group.Country + "<br>GDP %{x:.3f}<br>Score %{y:.3f}<extra></extra>"),
			Marker:        &grob.ScatterMarker{Color: grob.Color(in.Palette.Color(group.Country))},
		})
	}
	return fig
}

func scatter3DChart(in Input) Figure {
	fig := Figure{Layout: &grob.Layout{
		Title: title(fmt.Sprintf("GDP, social support and health in %d", in.Selection.Year)),
		Scene: &grob.LayoutScene{
			Xaxis: &grob.LayoutSceneXaxis{Title: &grob.LayoutSceneXaxisTitle{Text: grob.String(happiness.ColGDP.Label())}},
			Yaxis: &grob.LayoutSceneYaxis{Title: &grob.LayoutSceneYaxisTitle{Text: grob.String(happiness.ColSocial.Label())}},
			Zaxis: &grob.LayoutSceneZaxis{Title: &grob.LayoutSceneZaxisTitle{Text: grob.String(happiness.ColHealth.Label())}},
		},
	}}
	for _, group := range in.Filtered.GroupByCountry() {
		x := make([]happiness.Number, len(group.Rows))
		y := make([]happiness.Number, len(group.Rows))
		z := make([]happiness.Number, len(group.Rows))
		for i, r := range group.Rows {
			x[i] = happiness.Number(r.GDP)
			y[i] = happiness.Number(r.Social)
			z[i] = happiness.Number(r.Health)
		}
		fig.Data = append(fig.Data, &grob.Scatter3d{
			Type:   grob.TraceTypeScatter3d,
			Mode:   grob.Scatter3dMode("markers"),
			Name:   grob.String(group.Country),
			X:      x,
			Y:      y,
			Z:      z,
			Marker: &grob.Scatter3dMarker{Color: grob.Color(in.Palette.Color(group.Country))},
		})
	}
	return fig
}

func heatmapChart(in Input) Figure {
	fig := Figure{Layout: &grob.Layout{
		Title: title(fmt.Sprintf("Correlation between happiness factors in %d", in.Selection.Year)),
	}}
	if in.Filtered.Empty() || in.Correlation == nil || in.Correlation.Size() == 0 {
		return fig
	}
	labels := in.Correlation.Labels()
	fig.Data = append(fig.Data, &grob.Heatmap{
		Type:       grob.TraceTypeHeatmap,
		X:          labels,
		Y:          labels,
		Z:          in.Correlation.Rows(),
		Colorscale: grob.ColorScale("RdBu"),
		Zmin:       -1,
		Zmax:       1,
	})
	return fig
}

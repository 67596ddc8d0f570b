// Package plot renders dashboard charts to PNG with gonum/plot.
package plot

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	"happydash/domain/happiness"
	"happydash/internal/charts"
	"happydash/internal/errors"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Default image size
const (
	DefaultWidth  = 10 * vg.Inch
	DefaultHeight = 6 * vg.Inch
)

// Supported lists the chart kinds that can be exported as PNG
func Supported() []charts.Kind {
	return []charts.Kind{charts.KindBar, charts.KindLine, charts.KindBox, charts.KindScatter}
}

// IsSupported reports whether kind has a PNG renderer
func IsSupported(kind charts.Kind) bool {
	for _, k := range Supported() {
		if k == kind {
			return true
		}
	}
	return false
}

// WritePNG draws kind from in and writes the PNG to w
func WritePNG(w io.Writer, kind charts.Kind, in charts.Input) error {
	p, err := Build(kind, in)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(DefaultWidth, DefaultHeight, "png")
	if err != nil {
		return errors.Wrap(err, "failed to encode png")
	}
	if _, err := wt.WriteTo(w); err != nil {
		return errors.Wrap(err, "failed to write png")
	}
	return nil
}

// Build returns the gonum plot of kind. Missing values are dropped.
func Build(kind charts.Kind, in charts.Input) (*plot.Plot, error) {
	p := plot.New()
	p.Title.TextStyle.Font.Size = vg.Points(14)

	var err error
	switch kind {
	case charts.KindBar:
		err = barPlot(p, in)
	case charts.KindLine:
		err = linePlot(p, in)
	case charts.KindBox:
		err = boxPlot(p, in)
	case charts.KindScatter:
		err = scatterPlot(p, in)
	default:
		return nil, errors.NotFound(fmt.Sprintf("png renderer for chart %q", kind))
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build %s plot", kind)
	}
	return p, nil
}

func barPlot(p *plot.Plot, in charts.Input) error {
	p.Title.Text = fmt.Sprintf("Happiness score in %d", in.Selection.Year)
	p.Y.Label.Text = happiness.ColScore.Label()

	var names []string
	for _, group := range in.Filtered.GroupByCountry() {
		for _, r := range group.Rows {
			if math.IsNaN(r.Score) {
				continue
			}
			bars, err := plotter.NewBarChart(plotter.Values{r.Score}, vg.Points(30))
			if err != nil {
				return err
			}
			bars.LineStyle.Width = vg.Length(0)
			bars.Color = parseHex(in.Palette.Color(r.Country))
			bars.XMin = float64(len(names))
			p.Add(bars)
			p.Legend.Add(r.Country, bars)
			names = append(names, r.Country)
		}
	}
	if len(names) == 0 {
		markEmpty(p)
		return nil
	}
	p.NominalX(names...)
	return nil
}

func linePlot(p *plot.Plot, in charts.Input) error {
	p.Title.Text = "Historical happiness score"
	p.X.Label.Text = "Year"
	p.Y.Label.Text = happiness.ColScore.Label()

	drawn := 0
	for _, group := range in.History.GroupByCountry() {
		points := make(plotter.XYs, 0, len(group.Rows))
		for _, r := range group.Rows {
			if math.IsNaN(r.Score) {
				continue
			}
			points = append(points, plotter.XY{X: float64(r.Year), Y: r.Score})
		}
		if len(points) == 0 {
			continue
		}
		line, scatter, err := plotter.NewLinePoints(points)
		if err != nil {
			return err
		}
		c := parseHex(in.Palette.Color(group.Country))
		line.Color = c
		line.Width = vg.Points(2)
		scatter.GlyphStyle.Color = c
		p.Add(line, scatter)
		p.Legend.Add(group.Country, line, scatter)
		drawn++
	}
	if drawn == 0 {
		markEmpty(p)
	}
	return nil
}

func boxPlot(p *plot.Plot, in charts.Input) error {
	p.Title.Text = fmt.Sprintf("Distribution of happiness factors in %d", in.Selection.Year)
	p.Y.Label.Text = "Contribution"

	var names []string
	for i, c := range happiness.Indicators() {
		values := dropNaN(in.Filtered.Column(c))
		if len(values) == 0 {
			continue
		}
		box, err := plotter.NewBoxPlot(vg.Points(30), float64(len(names)), values)
		if err != nil {
			return err
		}
		box.FillColor = parseHex(charts.SeriesColor(i))
		p.Add(box)
		names = append(names, c.Label())
	}
	if len(names) == 0 {
		markEmpty(p)
		return nil
	}
	p.NominalX(names...)
	return nil
}

func scatterPlot(p *plot.Plot, in charts.Input) error {
	p.Title.Text = fmt.Sprintf("GDP per capita vs happiness score in %d", in.Selection.Year)
	p.X.Label.Text = happiness.ColGDP.Label()
	p.Y.Label.Text = happiness.ColScore.Label()
	p.Add(plotter.NewGrid())

	drawn := 0
	for _, group := range in.Filtered.GroupByCountry() {
		points := make(plotter.XYs, 0, len(group.Rows))
		for _, r := range group.Rows {
			if math.IsNaN(r.GDP) || math.IsNaN(r.Score) {
				continue
			}
			points = append(points, plotter.XY{X: r.GDP, Y: r.Score})
		}
		if len(points) == 0 {
			continue
		}
		scatter, err := plotter.NewScatter(points)
		if err != nil {
			return err
		}
		scatter.GlyphStyle.Color = parseHex(in.Palette.Color(group.Country))
		scatter.GlyphStyle.Radius = vg.Points(6)
		p.Add(scatter)
		p.Legend.Add(group.Country, scatter)
		drawn++
	}
	if drawn == 0 {
		markEmpty(p)
	}
	return nil
}

func markEmpty(p *plot.Plot) {
	p.Title.Text += "\n" + charts.NoDataText
}

func dropNaN(values []float64) plotter.Values {
	out := make(plotter.Values, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// parseHex reads "#RRGGBB"; anything else is black
func parseHex(s string) color.Color {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.Black
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.Black
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

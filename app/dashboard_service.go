package app

import (
	"context"
	"io"
	"time"

	pngplot "happydash/adapters/plot"
	"happydash/domain/happiness"
	"happydash/internal/analysis"
	"happydash/internal/charts"
	"happydash/internal/errors"
	"happydash/internal/loader"
	"happydash/ports"

	"go.uber.org/zap"
)

// Query is the user input of one dashboard interaction.
// Year 0 means the latest year. Countries are used only when Explicit is set, so an
// explicit empty selection stays empty while a first visit gets the defaults.
type Query struct {
	Year      int
	Countries []string
	Explicit  bool
}

// Options lists the widget choices of the raw table
type Options struct {
	Years     []int               `json:"years"`
	Countries []string            `json:"countries"`
	Default   happiness.Selection `json:"default"`
}

// View is everything one page render needs
type View struct {
	Selection   happiness.Selection         `json:"selection"`
	Options     Options                     `json:"options"`
	Raw         *happiness.Table            `json:"-"`
	Filtered    *happiness.Table            `json:"-"`
	History     *happiness.Table            `json:"-"`
	Summary     analysis.Summary            `json:"summary"`
	Correlation *analysis.CorrelationMatrix `json:"correlation"`
	Figures     []charts.Figure             `json:"figures"`
	Elapsed     time.Duration               `json:"-"`
}

// ChartInput returns the chart builder input of the view
func (v *View) ChartInput() charts.Input {
	return charts.Input{
		Selection:   v.Selection,
		Filtered:    v.Filtered,
		History:     v.History,
		Correlation: v.Correlation,
		Palette:     charts.NewPalette(v.Raw.Countries()),
	}
}

// DashboardService runs the fetch, filter, aggregate and render pipeline
type DashboardService struct {
	loader   *loader.Loader
	source   ports.TableSource
	defaults []string
	logger   *zap.Logger
}

// NewDashboardService creates a dashboard service over one source
func NewDashboardService(l *loader.Loader, source ports.TableSource, defaultCountries []string, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		loader:   l,
		source:   source,
		defaults: append([]string(nil), defaultCountries...),
		logger:   logger,
	}
}

// Source returns the configured table source
func (s *DashboardService) Source() ports.TableSource {
	return s.source
}

// Raw returns the cached raw table
func (s *DashboardService) Raw(ctx context.Context) (*happiness.Table, error) {
	table, err := s.loader.Table(ctx, s.source)
	if err != nil {
		if errors.IsCode(err, errors.CodeFetchError) {
			return nil, err
		}
		return nil, errors.FetchError(s.source.Location(), err)
	}
	return table, nil
}

// Options returns the year and country choices
func (s *DashboardService) Options(ctx context.Context) (Options, error) {
	raw, err := s.Raw(ctx)
	if err != nil {
		return Options{}, err
	}
	return optionsOf(raw, s.defaults), nil
}

func optionsOf(raw *happiness.Table, defaults []string) Options {
	return Options{
		Years:     raw.Years(),
		Countries: raw.Countries(),
		Default:   happiness.DefaultSelection(raw, defaults),
	}
}

// Resolve turns a query into a selection over raw
func (s *DashboardService) Resolve(raw *happiness.Table, q Query) happiness.Selection {
	sel := happiness.DefaultSelection(raw, s.defaults)
	if q.Year != 0 {
		sel.Year = q.Year
	}
	if q.Explicit {
		sel.Countries = dedupe(q.Countries)
	}
	return sel
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok || v == "" {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Filtered returns the selection and the rows it keeps
func (s *DashboardService) Filtered(ctx context.Context, q Query) (happiness.Selection, *happiness.Table, error) {
	raw, err := s.Raw(ctx)
	if err != nil {
		return happiness.Selection{}, nil, err
	}
	sel := s.Resolve(raw, q)
	return sel, raw.Filter(sel), nil
}

// History returns every year of the selected countries
func (s *DashboardService) History(ctx context.Context, q Query) (happiness.Selection, *happiness.Table, error) {
	raw, err := s.Raw(ctx)
	if err != nil {
		return happiness.Selection{}, nil, err
	}
	sel := s.Resolve(raw, q)
	return sel, raw.History(sel.Countries), nil
}

// View recomputes the whole page for q
func (s *DashboardService) View(ctx context.Context, q Query) (*View, error) {
	start := time.Now()
	raw, err := s.Raw(ctx)
	if err != nil {
		return nil, err
	}

	sel := s.Resolve(raw, q)
	filtered := raw.Filter(sel)
	view := &View{
		Selection:   sel,
		Options:     optionsOf(raw, s.defaults),
		Raw:         raw,
		Filtered:    filtered,
		History:     raw.History(sel.Countries),
		Summary:     analysis.Describe(filtered),
		Correlation: analysis.Correlate(filtered, happiness.CorrelationColumns()),
	}
	view.Figures = charts.BuildAll(view.ChartInput())
	view.Elapsed = time.Since(start)

	s.logger.Debug("view computed",
		zap.Int("year", sel.Year),
		zap.Strings("countries", sel.Countries),
		zap.Int("rows", filtered.Len()),
		zap.Duration("elapsed", view.Elapsed))
	return view, nil
}

// Chart builds a single figure
func (s *DashboardService) Chart(ctx context.Context, kind charts.Kind, q Query) (charts.Figure, error) {
	view, err := s.View(ctx, q)
	if err != nil {
		return charts.Figure{}, err
	}
	return charts.Build(kind, view.ChartInput()), nil
}

// WritePNG renders kind as PNG into w
func (s *DashboardService) WritePNG(ctx context.Context, w io.Writer, kind charts.Kind, q Query) error {
	if !pngplot.IsSupported(kind) {
		return errors.NotFound("png export of chart " + string(kind))
	}
	view, err := s.View(ctx, q)
	if err != nil {
		return err
	}
	return pngplot.WritePNG(w, kind, view.ChartInput())
}

// WriteCSV writes the raw table, or the filtered rows when filtered is set
func (s *DashboardService) WriteCSV(ctx context.Context, w io.Writer, q Query, filtered bool) error {
	raw, err := s.Raw(ctx)
	if err != nil {
		return err
	}
	table := raw
	if filtered {
		table = raw.Filter(s.Resolve(raw, q))
	}
	if err := table.Frame().WriteCSV(w); err != nil {
		return errors.Wrap(err, "failed to write csv")
	}
	return nil
}

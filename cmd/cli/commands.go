package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"happydash/adapters/plot"
	"happydash/app"
	"happydash/domain/happiness"
	"happydash/internal/analysis"
	"happydash/internal/charts"
	"happydash/internal/config"
	"happydash/internal/container"
	"happydash/internal/logging"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// queryFlags select the year and countries of a command
type queryFlags struct {
	year      int
	countries []string
}

func (q *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&q.year, "year", 0, "Year to show (default: latest)")
	cmd.Flags().StringSliceVar(&q.countries, "country", nil, "Country to include; repeat or comma separate (default: DEFAULT_COUNTRIES)")
}

func (q *queryFlags) query(cmd *cobra.Command) app.Query {
	return app.Query{
		Year:      q.year,
		Countries: q.countries,
		Explicit:  cmd.Flags().Changed("country"),
	}
}

// newDashboard builds the pipeline from the environment plus flag overrides
func newDashboard(ctx context.Context, flags *globalFlags) (*container.Container, error) {
	overrides := map[string]string{
		"DATA_SOURCE":    flags.source,
		"DATA_URL":       flags.data,
		"SHEET_ID":       flags.sheetID,
		"SHEET_NAME":     flags.sheet,
		"SCHEMA_PROFILE": flags.profile,
	}
	for key, value := range overrides {
		if value != "" {
			if err := os.Setenv(key, value); err != nil {
				return nil, err
			}
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(flags.logLevel, "console")
	if err != nil {
		return nil, err
	}

	c, err := container.New(cfg, logger.Named("cli"))
	if err != nil {
		return nil, err
	}
	if err := c.Init(ctx); err != nil {
		_ = c.Shutdown(ctx)
		return nil, err
	}
	return c, nil
}

// withDashboard runs fn against a fresh pipeline and releases it afterwards
func withDashboard(cmd *cobra.Command, flags *globalFlags, fn func(*app.DashboardService) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	c, err := newDashboard(ctx, flags)
	if err != nil {
		return err
	}
	defer func() { _ = c.Shutdown(ctx) }()
	return fn(c.Dashboard)
}

func newOptionsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List the available years and countries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDashboard(cmd, flags, func(svc *app.DashboardService) error {
				opts, err := svc.Options(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if flags.format == "json" {
					return writeJSON(out, opts)
				}
				heading(out, "Years")
				years := make([]string, len(opts.Years))
				for i, y := range opts.Years {
					years[i] = fmt.Sprintf("%d", y)
				}
				fmt.Fprintln(out, strings.Join(years, ", "))
				heading(out, fmt.Sprintf("Countries (%d)", len(opts.Countries)))
				fmt.Fprintln(out, strings.Join(opts.Countries, ", "))
				heading(out, "Default selection")
				fmt.Fprintf(out, "%d: %s\n", opts.Default.Year, strings.Join(opts.Default.Countries, ", "))
				return nil
			})
		},
	}
}

func newFilterCmd(flags *globalFlags) *cobra.Command {
	q := &queryFlags{}
	var history bool

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Print the rows of the selected year and countries",
		Long: `Print the rows matching the selection.

Example: happydash-cli filter --year 2023 --country Brazil --country Finland`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDashboard(cmd, flags, func(svc *app.DashboardService) error {
				var (
					sel   happiness.Selection
					table *happiness.Table
					err   error
				)
				if history {
					sel, table, err = svc.History(cmd.Context(), q.query(cmd))
				} else {
					sel, table, err = svc.Filtered(cmd.Context(), q.query(cmd))
				}
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if flags.format == "json" {
					return writeJSON(out, map[string]interface{}{"selection": sel, "rows": table.Rows()})
				}
				heading(out, selectionTitle(sel, history))
				if table.Empty() {
					color.New(color.FgYellow).Fprintln(out, charts.NoDataText)
					return nil
				}
				renderObservations(out, table.Rows())
				return nil
			})
		},
	}
	q.register(cmd)
	cmd.Flags().BoolVar(&history, "history", false, "Show every year of the selected countries")
	return cmd
}

func newDescribeCmd(flags *globalFlags) *cobra.Command {
	q := &queryFlags{}

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Print descriptive statistics of the selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDashboard(cmd, flags, func(svc *app.DashboardService) error {
				sel, filtered, err := svc.Filtered(cmd.Context(), q.query(cmd))
				if err != nil {
					return err
				}
				summary := analysis.Describe(filtered)
				out := cmd.OutOrStdout()
				if flags.format == "json" {
					return writeJSON(out, map[string]interface{}{"selection": sel, "summary": summary})
				}
				heading(out, selectionTitle(sel, false))
				if summary.Empty() {
					color.New(color.FgYellow).Fprintln(out, charts.NoDataText)
					return nil
				}
				renderSummary(out, summary)
				return nil
			})
		},
	}
	q.register(cmd)
	return cmd
}

func newCorrCmd(flags *globalFlags) *cobra.Command {
	q := &queryFlags{}

	cmd := &cobra.Command{
		Use:   "corr",
		Short: "Print the correlation matrix of score and the six indicators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDashboard(cmd, flags, func(svc *app.DashboardService) error {
				sel, filtered, err := svc.Filtered(cmd.Context(), q.query(cmd))
				if err != nil {
					return err
				}
				matrix := analysis.Correlate(filtered, happiness.CorrelationColumns())
				out := cmd.OutOrStdout()
				if flags.format == "json" {
					return writeJSON(out, map[string]interface{}{"selection": sel, "correlation": matrix})
				}
				heading(out, selectionTitle(sel, false))
				renderCorrelation(out, matrix)
				return nil
			})
		},
	}
	q.register(cmd)
	return cmd
}

func newExportCmd(flags *globalFlags) *cobra.Command {
	q := &queryFlags{}
	var output string
	var raw bool

	cmd := &cobra.Command{
		Use:   "export [bar|line|box|scatter|csv]",
		Short: "Write a chart as PNG or the data as CSV",
		Long: `Write one chart of the selection as a PNG image, or the data as CSV.

Example: happydash-cli export bar --year 2023 -o bar.png
         happydash-cli export csv --raw -o happiness.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.ToLower(args[0])
			var kind charts.Kind
			if target != "csv" {
				k, ok := charts.ParseKind(target)
				if !ok || !plot.IsSupported(k) {
					return fmt.Errorf("unknown chart %q (valid: %s, csv)", target, kindList())
				}
				kind = k
			}
			if output == "" {
				if target == "csv" {
					output = "happiness.csv"
				} else {
					output = target + ".png"
				}
			}

			return withDashboard(cmd, flags, func(svc *app.DashboardService) error {
				var buf bytes.Buffer
				var err error
				if target == "csv" {
					err = svc.WriteCSV(cmd.Context(), &buf, q.query(cmd), !raw)
				} else {
					err = svc.WritePNG(cmd.Context(), &buf, kind, q.query(cmd))
				}
				if err != nil {
					return err
				}
				if output == "-" {
					_, err = buf.WriteTo(cmd.OutOrStdout())
					return err
				}
				if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", output, err)
				}
				color.New(color.FgGreen).Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", output, buf.Len())
				return nil
			})
		},
	}
	q.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, - for stdout")
	cmd.Flags().BoolVar(&raw, "raw", false, "Export the whole dataset instead of the selection (csv only)")
	return cmd
}

func kindList() string {
	names := []string{}
	for _, k := range plot.Supported() {
		names = append(names, string(k))
	}
	return strings.Join(names, ", ")
}

func selectionTitle(sel happiness.Selection, history bool) string {
	countries := "no countries"
	if len(sel.Countries) > 0 {
		countries = strings.Join(sel.Countries, ", ")
	}
	if history {
		return "All years: " + countries
	}
	return fmt.Sprintf("%d: %s", sel.Year, countries)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

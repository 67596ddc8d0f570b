package main

import (
	"fmt"
	"io"

	"happydash/domain/happiness"
	"happydash/internal/analysis"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

func heading(w io.Writer, text string) {
	color.New(color.FgCyan, color.Bold).Fprintln(w, text)
}

func renderObservations(w io.Writer, rows []happiness.Observation) {
	table := tablewriter.NewWriter(w)
	header := []string{"Country", "Year", "Rank", "Score"}
	for _, c := range happiness.Indicators() {
		header = append(header, c.Label())
	}
	table.SetHeader(header)

	for _, r := range rows {
		line := []string{r.Country, fmt.Sprintf("%d", r.Year), happiness.FormatRank(r.Rank), happiness.FormatNumber(r.Score)}
		for _, c := range happiness.Indicators() {
			line = append(line, happiness.FormatNumber(r.Value(c)))
		}
		table.Append(line)
	}
	table.Render()
}

func renderSummary(w io.Writer, summary analysis.Summary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(append([]string{"Column"}, analysis.StatNames...))
	for _, cs := range summary.Columns {
		table.Append(append([]string{cs.Label}, cs.Cells()...))
	}
	table.Render()
}

func renderCorrelation(w io.Writer, m *analysis.CorrelationMatrix) {
	table := tablewriter.NewWriter(w)
	labels := m.Labels()
	table.SetHeader(append([]string{""}, labels...))
	for i, row := range m.Rows() {
		line := []string{labels[i]}
		for _, v := range row {
			line = append(line, happiness.FormatNumber(float64(v)))
		}
		table.Append(line)
	}
	table.Render()
}

package ui

import (
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"happydash/domain/happiness"
	"happydash/internal/analysis"
	"happydash/internal/errors"
	"happydash/ui/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// pageData is the model of index.html
type pageData struct {
	Title     string
	Intro     template.HTML
	Error     string
	RequestID string
	Year      int
	Years     []int
	Countries []string
	Selected  []string
	Loaded    bool
	RawRows   []happiness.Observation
	Rows      []happiness.Observation
	Summary   analysis.Summary
	StatNames []string
	CorrCols  []string
	CorrRows  [][]happiness.Number
	Figures   template.JS
	Charts    []chartSlot
	Generated string
}

// chartSlot is one chart container on the page
type chartSlot struct {
	ID    string
	Title string
}

// handleIndex renders the full dashboard for the current selection
func (s *Server) handleIndex(c *gin.Context) {
	data := pageData{
		Title:     s.title,
		Intro:     s.intro,
		RequestID: middleware.GetRequestID(c),
		StatNames: analysis.StatNames,
		Figures:   template.JS("[]"),
		Generated: time.Now().UTC().Format(time.RFC3339),
	}

	q, err := parseQuery(c)
	if err != nil {
		data.Error = err.Error()
		// keep the form so the input can be corrected
		if opts, optErr := s.service.Options(c.Request.Context()); optErr == nil {
			data.Year = opts.Default.Year
			data.Years = opts.Years
			data.Countries = opts.Countries
			data.Selected = opts.Default.Countries
		}
		s.renderTemplate(c, errors.HTTPStatus(err), "index.html", data)
		return
	}

	view, err := s.service.View(c.Request.Context(), q)
	if err != nil {
		s.logger.Warn("dashboard unavailable",
			zap.String("request_id", data.RequestID),
			zap.Error(err))
		data.Error = errorText(err)
		s.renderTemplate(c, errors.HTTPStatus(err), "index.html", data)
		return
	}

	figures, err := json.Marshal(view.Figures)
	if err != nil {
		data.Error = "failed to encode charts"
		s.renderTemplate(c, http.StatusInternalServerError, "index.html", data)
		return
	}

	data.Loaded = true
	data.Year = view.Selection.Year
	data.Years = view.Options.Years
	data.Countries = view.Options.Countries
	data.Selected = view.Selection.Countries
	data.RawRows = view.Raw.Rows()
	data.Rows = view.Filtered.Rows()
	data.Summary = view.Summary
	data.CorrCols = view.Correlation.Labels()
	data.CorrRows = view.Correlation.Rows()
	data.Figures = template.JS(figures)
	for _, f := range view.Figures {
		data.Charts = append(data.Charts, chartSlot{ID: f.ID, Title: f.Title()})
	}

	s.renderTemplate(c, http.StatusOK, "index.html", data)
}

// errorText is the message shown in the error banner
func errorText(err error) string {
	if errors.IsCode(err, errors.CodeFetchError) {
		return "The dataset could not be loaded: " + err.Error()
	}
	return err.Error()
}

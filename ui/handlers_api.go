package ui

import (
	"bytes"
	"fmt"
	"net/http"

	"happydash/adapters/plot"
	"happydash/domain/happiness"
	"happydash/internal/analysis"
	"happydash/internal/charts"
	"happydash/internal/errors"
	"happydash/ui/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError writes the JSON error body with the status of the error code
func (s *Server) respondError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= 500 {
		s.logger.Warn("api request failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}

// handleOptions returns the year and country choices
func (s *Server) handleOptions(c *gin.Context) {
	opts, err := s.service.Options(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, opts)
}

type rowsResponse struct {
	Selection happiness.Selection     `json:"selection"`
	Count     int                     `json:"count"`
	Rows      []happiness.Observation `json:"rows"`
}

// handleObservations returns the filtered rows
func (s *Server) handleObservations(c *gin.Context) {
	q, err := parseQuery(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	sel, filtered, err := s.service.Filtered(c.Request.Context(), q)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rowsResponse{Selection: sel, Count: filtered.Len(), Rows: filtered.Rows()})
}

// handleHistory returns every year of the selected countries
func (s *Server) handleHistory(c *gin.Context) {
	q, err := parseQuery(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	sel, history, err := s.service.History(c.Request.Context(), q)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rowsResponse{Selection: sel, Count: history.Len(), Rows: history.Rows()})
}

type statsResponse struct {
	Selection   happiness.Selection         `json:"selection"`
	Summary     analysis.Summary            `json:"summary"`
	Correlation *analysis.CorrelationMatrix `json:"correlation"`
}

// handleStats returns describe and the correlation matrix of the filtered rows
func (s *Server) handleStats(c *gin.Context) {
	q, err := parseQuery(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	sel, filtered, err := s.service.Filtered(c.Request.Context(), q)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, statsResponse{
		Selection:   sel,
		Summary:     analysis.Describe(filtered),
		Correlation: analysis.Correlate(filtered, happiness.CorrelationColumns()),
	})
}

// handleCharts returns every figure
func (s *Server) handleCharts(c *gin.Context) {
	q, err := parseQuery(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	view, err := s.service.View(c.Request.Context(), q)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"selection": view.Selection, "figures": view.Figures})
}

// handleChart returns one figure
func (s *Server) handleChart(c *gin.Context) {
	kind, ok := charts.ParseKind(c.Param("kind"))
	if !ok {
		s.respondError(c, errors.NotFound(fmt.Sprintf("chart %q", c.Param("kind"))))
		return
	}
	q, err := parseQuery(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	fig, err := s.service.Chart(c.Request.Context(), kind, q)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fig)
}

// handleDataCSV downloads the raw or filtered table
func (s *Server) handleDataCSV(c *gin.Context) {
	scope := c.DefaultQuery("scope", "filtered")
	if scope != "raw" && scope != "filtered" {
		s.respondError(c, errors.InvalidInput(fmt.Sprintf("scope must be raw or filtered, got %q", scope)))
		return
	}
	q, err := parseQuery(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := s.service.WriteCSV(c.Request.Context(), &buf, q, scope == "filtered"); err != nil {
		s.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="happiness-%s.csv"`, scope))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// handlePNG renders one chart as an image
func (s *Server) handlePNG(c *gin.Context) {
	kind, ok := charts.ParseKind(c.Param("kind"))
	if !ok || !plot.IsSupported(kind) {
		s.respondError(c, errors.NotFound(fmt.Sprintf("png chart %q", c.Param("kind"))))
		return
	}
	q, err := parseQuery(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := s.service.WritePNG(c.Request.Context(), &buf, kind, q); err != nil {
		s.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

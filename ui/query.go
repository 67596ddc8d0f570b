package ui

import (
	"fmt"
	"strconv"
	"strings"

	"happydash/app"
	"happydash/internal/errors"

	"github.com/gin-gonic/gin"
)

// parseQuery reads year, country and submitted from the query string.
// A first visit without parameters gets the default selection.
func parseQuery(c *gin.Context) (app.Query, error) {
	var q app.Query

	if raw := strings.TrimSpace(c.Query("year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year <= 0 {
			return q, errors.InvalidInput(fmt.Sprintf("year must be a positive integer, got %q", raw))
		}
		q.Year = year
	}

	countries := c.QueryArray("country")
	for _, country := range countries {
		if country = strings.TrimSpace(country); country != "" {
			q.Countries = append(q.Countries, country)
		}
	}
	q.Explicit = c.Query("submitted") == "1" || len(q.Countries) > 0
	return q, nil
}

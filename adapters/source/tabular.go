package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"happydash/adapters/excel"
	"happydash/domain/happiness"
	"happydash/internal/errors"
	"happydash/internal/schema"

	"go.uber.org/zap"
)

var sheetsBaseURL = "https://docs.google.com/spreadsheets/d/"

// SheetCSVURL builds the CSV export URL of one sheet of a spreadsheet document
func SheetCSVURL(documentID, sheetName string) string {
	sheet := strings.ReplaceAll(url.QueryEscape(sheetName), "+", "%20")
	return fmt.Sprintf("%s%s/gviz/tq?tqx=out:csv&sheet=%s", sheetsBaseURL, url.PathEscape(documentID), sheet)
}

// SheetXLSXURL builds the workbook export URL of a spreadsheet document
func SheetXLSXURL(documentID string) string {
	return fmt.Sprintf("%s%s/export?format=xlsx", sheetsBaseURL, url.PathEscape(documentID))
}

// TabularSource loads a CSV or xlsx dataset and decodes it with a schema profile
type TabularSource struct {
	location string
	fetcher  *Fetcher
	reader   *excel.DataReader
	profile  schema.Profile
	logger   *zap.Logger
}

// NewCSVSource reads CSV from a URL or local path
func NewCSVSource(location string, profile schema.Profile, fetcher *Fetcher, logger *zap.Logger) *TabularSource {
	return newTabularSource(location, excel.FileTypeCSV, "", profile, fetcher, logger)
}

// NewXLSXSource reads one sheet of a workbook from a URL or local path; empty sheet means the first
func NewXLSXSource(location, sheet string, profile schema.Profile, fetcher *Fetcher, logger *zap.Logger) *TabularSource {
	return newTabularSource(location, excel.FileTypeXLSX, sheet, profile, fetcher, logger)
}

// NewSheetSource reads the CSV export of a named sheet of a spreadsheet document
func NewSheetSource(documentID, sheetName string, profile schema.Profile, fetcher *Fetcher, logger *zap.Logger) *TabularSource {
	return NewCSVSource(SheetCSVURL(documentID, sheetName), profile, fetcher, logger)
}

func newTabularSource(location string, fileType excel.FileType, sheet string, profile schema.Profile, fetcher *Fetcher, logger *zap.Logger) *TabularSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fetcher == nil {
		fetcher = NewFetcher(0, logger)
	}
	return &TabularSource{
		location: location,
		fetcher:  fetcher,
		reader:   excel.NewDataReader(fileType, sheet, logger),
		profile:  profile,
		logger:   logger,
	}
}

// Location implements ports.TableSource
func (s *TabularSource) Location() string {
	return s.location
}

// Load implements ports.TableSource. Every failure is a fetch error.
func (s *TabularSource) Load(ctx context.Context) (*happiness.Table, error) {
	start := time.Now()

	body, err := s.fetcher.Open(ctx, s.location)
	if err != nil {
		return nil, errors.FetchError(s.location, err)
	}
	defer body.Close()

	data, err := s.reader.ReadData(body)
	if err != nil {
		return nil, errors.FetchError(s.location, err)
	}

	table, report, err := s.profile.Decode(data)
	if err != nil {
		return nil, errors.FetchError(s.location, err)
	}

	fields := []zap.Field{
		zap.String("location", s.location),
		zap.String("profile", s.profile.Name),
		zap.Int("rows", report.Rows),
		zap.Duration("elapsed", time.Since(start)),
	}
	if report.Dropped > 0 {
		fields = append(fields, zap.Int("dropped", report.Dropped))
	}
	if len(report.MissingOptional) > 0 {
		fields = append(fields, zap.Strings("missing_optional", report.MissingOptional))
	}
	s.logger.Info("dataset decoded", fields...)

	return table, nil
}

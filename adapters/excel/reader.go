package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"happydash/internal/errors"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// FileType is the encoding of a tabular source
type FileType string

const (
	FileTypeCSV  FileType = "csv"
	FileTypeXLSX FileType = "xlsx"
)

// DetectFileType guesses the file type from a path or URL.
// Spreadsheet export URLs carrying format=xlsx are recognised; everything else is CSV.
func DetectFileType(location string) FileType {
	if u, err := url.Parse(location); err == nil && u.Scheme != "" && u.Host != "" {
		if strings.EqualFold(u.Query().Get("format"), "xlsx") {
			return FileTypeXLSX
		}
		location = u.Path
	}
	switch strings.ToLower(path.Ext(location)) {
	case ".xlsx", ".xlsm":
		return FileTypeXLSX
	default:
		return FileTypeCSV
	}
}

// DataReader turns CSV or xlsx bytes into header + string rows
type DataReader struct {
	fileType  FileType
	sheetName string
	logger    *zap.Logger
}

// NewDataReader creates a reader. sheetName is only used for xlsx; empty means the first sheet.
func NewDataReader(fileType FileType, sheetName string, logger *zap.Logger) *DataReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DataReader{fileType: fileType, sheetName: sheetName, logger: logger}
}

// ReadData reads the whole input into structured rows
func (r *DataReader) ReadData(src io.Reader) (*ExcelData, error) {
	switch r.fileType {
	case FileTypeCSV:
		return r.readCSVData(src)
	case FileTypeXLSX:
		return r.readExcelData(src)
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported file type: %s", r.fileType))
	}
}

// readExcelData reads the configured sheet of a workbook
func (r *DataReader) readExcelData(src io.Reader) (*ExcelData, error) {
	startTime := time.Now()
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, errors.SchemaMismatch(fmt.Sprintf("failed to open workbook: %v", err))
	}
	defer f.Close()

	sheet := r.sheetName
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.SchemaMismatch("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.SchemaMismatch(fmt.Sprintf("failed to read sheet %q: %v", sheet, err))
	}
	r.logger.Debug("workbook sheet read",
		zap.String("sheet", sheet),
		zap.Int("rows", len(rows)),
		zap.Duration("elapsed", time.Since(startTime)))

	if len(rows) < 2 {
		return nil, errors.SchemaMismatch("workbook must have at least a header row and one data row")
	}
	return r.processRows(rows)
}

// readCSVData reads comma separated data
func (r *DataReader) readCSVData(src io.Reader) (*ExcelData, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.SchemaMismatch(fmt.Sprintf("failed to read CSV: %v", err))
	}
	r.logger.Debug("CSV read",
		zap.Int("rows", len(rows)),
		zap.Duration("elapsed", time.Since(readStart)))

	if len(rows) < 2 {
		return nil, errors.SchemaMismatch("CSV must have at least a header row and one data row")
	}
	return r.processRows(rows)
}

// processRows trims cells and pads ragged rows to the header width.
// Fully blank rows are skipped.
func (r *DataReader) processRows(rows [][]string) (*ExcelData, error) {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		if i == 0 {
			header = strings.TrimPrefix(header, "\ufeff")
		}
		headers[i] = strings.TrimSpace(header)
	}

	dataRows := make([][]string, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := make([]string, len(headers))
		blank := true
		for j, cell := range rows[i] {
			if j >= len(headers) {
				break
			}
			row[j] = strings.TrimSpace(cell)
			if row[j] != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		dataRows = append(dataRows, row)
	}

	r.logger.Debug("rows processed",
		zap.String("type", string(r.fileType)),
		zap.Int("columns", len(headers)),
		zap.Int("rows", len(dataRows)))

	return &ExcelData{
		Headers: headers,
		Rows:    dataRows,
	}, nil
}

// ReadBytes is a convenience wrapper over ReadData
func (r *DataReader) ReadBytes(data []byte) (*ExcelData, error) {
	return r.ReadData(bytes.NewReader(data))
}

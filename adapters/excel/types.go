package excel

// ExcelData holds a header row and the data rows of a sheet.
// Every row has exactly len(Headers) cells.
type ExcelData struct {
	Headers []string
	Rows    [][]string
}

// Records returns headers followed by rows
func (d *ExcelData) Records() [][]string {
	records := make([][]string, 0, len(d.Rows)+1)
	records = append(records, d.Headers)
	records = append(records, d.Rows...)
	return records
}

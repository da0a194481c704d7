package excel

// RawRowData represents a row of raw spreadsheet data as header → cell
type RawRowData map[string]string

// SheetData represents the complete dataset before typing
type SheetData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

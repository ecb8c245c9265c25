package excel

// RawRowData represents a row of raw sheet data as string key-value pairs
type RawRowData map[string]string

// SheetData represents a complete sheet
type SheetData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

// HasColumn reports whether a header is present
func (d *SheetData) HasColumn(name string) bool {
	for _, h := range d.Headers {
		if h == name {
			return true
		}
	}
	return false
}

package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"flareshield/domain/core"
	"flareshield/domain/flare"

	"github.com/xuri/excelize/v2"
)

// DataReader reads observed light curves from Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	columns  ColumnConfig
}

// NewDataReader creates a reader; the file type follows the extension
func NewDataReader(filePath string, columns ColumnConfig) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	if columns.Sheet == "" {
		columns.Sheet = DefaultColumnConfig().Sheet
	}
	return &DataReader{filePath: filePath, fileType: fileType, columns: columns}
}

// ReadObservations implements ports.ObservationSource. Rows with a blank time are skipped;
// a missing or blank sigma is derived from the value with the standard noise model.
func (r *DataReader) ReadObservations(ctx context.Context) (flare.DataSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := r.ReadData()
	if err != nil {
		return nil, err
	}
	for _, col := range []string{r.columns.Time, r.columns.Value} {
		if !raw.HasColumn(col) {
			return nil, fmt.Errorf("%w: missing column %q", core.ErrInvalidData, col)
		}
	}

	data := make(flare.DataSet, 0, len(raw.Rows))
	for i, row := range raw.Rows {
		if strings.TrimSpace(row[r.columns.Time]) == "" {
			continue
		}
		point, err := r.parseRow(row)
		if err != nil {
			return nil, core.NewDataError(i, err.Error())
		}
		data = append(data, point)
	}

	if err := data.Validate(); err != nil {
		return nil, err
	}
	log.Printf("[DataReader] %d observations read from %s", len(data), r.filePath)
	return data, nil
}

func (r *DataReader) parseRow(row RawRowData) (flare.DataPoint, error) {
	t, err := strconv.ParseFloat(row[r.columns.Time], 64)
	if err != nil {
		return flare.DataPoint{}, fmt.Errorf("invalid time %q", row[r.columns.Time])
	}
	y, err := strconv.ParseFloat(row[r.columns.Value], 64)
	if err != nil {
		return flare.DataPoint{}, fmt.Errorf("invalid value %q", row[r.columns.Value])
	}

	sigma := flare.NoiseScale(y)
	if s := row[r.columns.Sigma]; r.columns.Sigma != "" && s != "" {
		sigma, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return flare.DataPoint{}, fmt.Errorf("invalid sigma %q", s)
		}
	}
	return flare.DataPoint{T: t, YData: y, Sigma: sigma}, nil
}

// ReadData reads the configured sheet, or the CSV file, into rows keyed by header
func (r *DataReader) ReadData() (*SheetData, error) {
	log.Printf("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s file not found: %s", core.ErrNotFound, strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

func (r *DataReader) readExcelData() (*SheetData, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(r.columns.Sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.columns.Sheet, err)
	}
	log.Printf("[DataReader] %s read in %.2fms (%d rows)",
		r.columns.Sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: Excel file must have a header row and at least one data row", core.ErrInsufficientData)
	}
	return r.processRows(rows)
}

func (r *DataReader) readCSVData() (*SheetData, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	log.Printf("[DataReader] CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: CSV file must have a header row and at least one data row", core.ErrInsufficientData)
	}
	return r.processRows(rows)
}

// processRows converts raw string rows into SheetData
func (r *DataReader) processRows(rows [][]string) (*SheetData, error) {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rowData := make(RawRowData)
		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}

	return &SheetData{Headers: headers, Rows: dataRows}, nil
}

package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"

	"flareshield/domain/flare"
	"flareshield/ports"

	"github.com/xuri/excelize/v2"
)

// Sheet names written by ReportWriter
const (
	SummarySheet   = "Summary"
	TraceSheet     = "Trace"
	PosteriorSheet = "Posterior"
	DataSheet      = "Data"
)

// ReportWriter exports a chain report as an xlsx workbook
type ReportWriter struct {
	filePath string
}

// NewReportWriter creates a writer targeting filePath
func NewReportWriter(filePath string) *ReportWriter {
	return &ReportWriter{filePath: filePath}
}

// Export implements ports.ChainExporter
func (w *ReportWriter) Export(ctx context.Context, report ports.ChainReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("failed to rename summary sheet: %w", err)
	}
	for _, name := range []string{TraceSheet, PosteriorSheet, DataSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	writers := []func(*excelize.File, ports.ChainReport) error{
		writeSummary, writeTrace, writePosterior, writeData,
	}
	for _, write := range writers {
		if err := write(f, report); err != nil {
			return err
		}
	}

	if err := f.SaveAs(w.filePath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	log.Printf("[ReportWriter] session %s written to %s", report.SessionID, w.filePath)
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func writeSummary(f *excelize.File, report ports.ChainReport) error {
	rows := [][]interface{}{
		{"field", "value"},
		{"session_id", report.SessionID},
		{"iterations", report.Iterations},
		{"accepted", report.Accepted},
		{"acceptance_rate", report.AcceptanceRate},
		{"step_size", report.Config.StepSize},
		{"seed", report.Config.Seed},
		{"current_A", report.Current.A},
		{"current_tau", report.Current.Tau},
		{"current_omega", report.Current.Omega},
	}
	if report.TrueParams != nil {
		rows = append(rows,
			[]interface{}{"true_A", report.TrueParams.A},
			[]interface{}{"true_tau", report.TrueParams.Tau},
			[]interface{}{"true_omega", report.TrueParams.Omega},
		)
	}
	return writeRows(f, SummarySheet, rows)
}

func writeTrace(f *excelize.File, report ports.ChainReport) error {
	rows := make([][]interface{}, 0, len(report.Trace)+1)
	rows = append(rows, []interface{}{"draw", "A", "tau", "omega"})
	for i, p := range report.Trace {
		rows = append(rows, []interface{}{i + 1, p.A, p.Tau, p.Omega})
	}
	return writeRows(f, TraceSheet, rows)
}

func writePosterior(f *excelize.File, report ports.ChainReport) error {
	rows := [][]interface{}{{"param", "samples", "mean", "median", "std_dev", "ci_low", "ci_high"}}
	for _, p := range report.Posteriors {
		rows = append(rows, []interface{}{
			string(p.Key), p.Samples, p.Mean, p.Median, p.StdDev, p.Interval.Low, p.Interval.High,
		})
	}
	rows = append(rows, []interface{}{}, []interface{}{"param", "bin_start", "count"})
	for _, p := range report.Posteriors {
		for _, b := range p.Bins {
			rows = append(rows, []interface{}{string(p.Key), b.Start, b.Count})
		}
	}
	return writeRows(f, PosteriorSheet, rows)
}

func writeData(f *excelize.File, report ports.ChainReport) error {
	rows := make([][]interface{}, 0, len(report.Data)+1)
	rows = append(rows, []interface{}{"t", "ydata", "ymodel", "sigma"})
	for _, d := range report.Data {
		rows = append(rows, []interface{}{d.T, d.YData, d.YModel, d.Sigma})
	}
	return writeRows(f, DataSheet, rows)
}

// WriteCSV writes a data set with the header t,ydata,ymodel,sigma
func WriteCSV(out io.Writer, data flare.DataSet) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"t", "ydata", "ymodel", "sigma"}); err != nil {
		return err
	}
	for _, d := range data {
		record := []string{formatFloat(d.T), formatFloat(d.YData), formatFloat(d.YModel), formatFloat(d.Sigma)}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

package reconcile

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
)

// WriteReport writes the discrepancy report to w: one row per mismatched
// field, matched fields and unmatched records omitted.
func WriteReport(w io.Writer, report *ScanReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"numero_internamento", "field", "csv_field", "db_value", "csv_value",
	}); err != nil {
		return err
	}

	for _, res := range report.Discrepant() {
		for _, c := range res.Comparisons {
			if c.Match {
				continue
			}
			if err := cw.Write([]string{
				strconv.FormatInt(res.AdmissionNumber, 10),
				c.Field,
				c.CSVColumn,
				c.DBValue,
				c.CSVValue,
			}); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportReport writes the discrepancy report to path, creating parent
// directories as needed.
func ExportReport(path string, report *ScanReport, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	if err := WriteReport(f, report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	logger.Info("reconcile.report.ok", "path", path, "discrepant_records", report.WithDiscrepancies)
	return nil
}

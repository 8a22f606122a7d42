package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/uqregistry/admissions-tracker/internal/reconcile"
	"github.com/uqregistry/admissions-tracker/internal/repository"
)

// Service produces XLSX bytes for offline review of the collection.
type Service struct {
	repo   repository.AdmissionRepository
	logger *slog.Logger
}

func NewService(repo repository.AdmissionRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// ExportAdmissionsXLSX returns an XLSX workbook with one row per admission.
func (s *Service) ExportAdmissionsXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	records, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("query admissions: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Admissions"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		_, err := f.NewSheet(sheet)
		if err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Admission Number",
		"Year",
		"Process Number",
		"Patient Name",
		"Admission Date",
		"Discharge Date",
		"Discharge Destination",
		"Birth Date",
		"Burn Date",
		"Burn Regions",
		"Updated From CSV",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range records {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.AdmissionNumber())
		if r.Year != nil {
			write(2, *r.Year)
		}
		if r.Patient != nil {
			if r.Patient.ProcessNumber != nil {
				write(3, *r.Patient.ProcessNumber)
			}
			write(4, r.Patient.Name)
			write(8, reconcile.NormalizeDate(r.Patient.BirthDate))
		}
		if r.Admission != nil {
			write(5, reconcile.NormalizeDate(r.Admission.AdmissionDate))
			write(6, reconcile.NormalizeDate(r.Admission.DischargeDate))
			write(7, r.Admission.Destination)
		}
		write(9, reconcile.NormalizeDate(r.FirstBurnDate()))
		write(10, len(r.Burns))
		write(11, r.UpdatedFromCSV)

		row++
	}

	// Widen the name and destination columns
	_ = f.SetColWidth(sheet, "D", "D", 32)
	_ = f.SetColWidth(sheet, "G", "G", 24)
	_ = f.SetColWidth(sheet, "A", "C", 16)
	_ = f.SetColWidth(sheet, "E", "F", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

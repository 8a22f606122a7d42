package reconcile

import (
	"log/slog"
	"time"

	"github.com/uqregistry/admissions-tracker/internal/dataset"
	"github.com/uqregistry/admissions-tracker/internal/entity"
)

// RecordResult is the outcome for one scanned record.
type RecordResult struct {
	AdmissionNumber  int64
	InRegistry       bool
	Comparisons      []FieldDiscrepancy // full field set, matches included
	HasDiscrepancies bool
	Row              dataset.Row // valid only when InRegistry
}

// ScanReport aggregates one full reconciliation pass.
type ScanReport struct {
	Total             int
	PerfectMatches    int
	WithDiscrepancies int
	Unmatched         int
	// FieldMismatches counts, per field, the records where it mismatched.
	FieldMismatches map[string]int
	Results         []RecordResult
}

// Discrepant returns the results that carry at least one mismatch.
func (r *ScanReport) Discrepant() []RecordResult {
	var out []RecordResult
	for _, res := range r.Results {
		if res.HasDiscrepancies {
			out = append(out, res)
		}
	}
	return out
}

// FieldMismatchRate returns a field's mismatch share of discrepant records.
func (r *ScanReport) FieldMismatchRate(field string) float64 {
	if r.WithDiscrepancies == 0 {
		return 0
	}
	return float64(r.FieldMismatches[field]) / float64(r.WithDiscrepancies) * 100
}

// Scan compares every record against the registry index. One pass, O(1)
// lookups. Records absent from the registry are classified unmatched and
// excluded from comparison; they are never update candidates.
func Scan(records []*entity.AdmissionRecord, rows dataset.Index, logger *slog.Logger) *ScanReport {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	report := &ScanReport{
		FieldMismatches: make(map[string]int, len(Fields)),
	}

	for _, rec := range records {
		report.Total++
		key := rec.AdmissionNumber()

		row, ok := rows[key]
		if !ok {
			report.Unmatched++
			report.Results = append(report.Results, RecordResult{
				AdmissionNumber: key,
			})
			continue
		}

		comparisons := Compare(rec, row)
		res := RecordResult{
			AdmissionNumber: key,
			InRegistry:      true,
			Comparisons:     comparisons,
			Row:             row,
		}
		for _, c := range comparisons {
			if !c.Match {
				res.HasDiscrepancies = true
				report.FieldMismatches[c.Field]++
			}
		}
		if res.HasDiscrepancies {
			report.WithDiscrepancies++
		} else {
			report.PerfectMatches++
		}
		report.Results = append(report.Results, res)
	}

	logger.Info("reconcile.scan.ok",
		"total", report.Total,
		"perfect", report.PerfectMatches,
		"discrepant", report.WithDiscrepancies,
		"unmatched", report.Unmatched,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return report
}

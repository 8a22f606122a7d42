// Package status reports per-subject pipeline checkpoints by scanning the
// output tree: a subject is parsed when page markdown exists, extracted when
// its validated JSON exists, imported when its admission number is in the
// collection. The scan is what lets every stage skip finished work.
package status

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// Store is the narrow storage surface the scan needs.
type Store interface {
	Exists(ctx context.Context, admissionNumber int64) (bool, error)
}

// Subject is one subject folder's checkpoint state.
type Subject struct {
	ID              string
	Parsed          bool
	Extracted       bool
	Imported        bool
	AdmissionNumber int64
	ExtractedPath   string
}

// Report is the full pipeline state for one output tree.
type Report struct {
	Subjects  []Subject
	Parsed    int
	Extracted int
	Imported  int
}

// NotExtracted returns the subjects that parsed but have no extraction yet.
func (r *Report) NotExtracted() []string {
	var out []string
	for _, s := range r.Subjects {
		if s.Parsed && !s.Extracted {
			out = append(out, s.ID)
		}
	}
	return out
}

// NotImported returns the subjects extracted but missing from the collection.
func (r *Report) NotImported() []string {
	var out []string
	for _, s := range r.Subjects {
		if s.Extracted && !s.Imported {
			out = append(out, s.ID)
		}
	}
	return out
}

// Scan walks outputDir for 4-digit subject folders and derives each one's
// checkpoints. store may be nil, in which case import status is not checked.
func Scan(ctx context.Context, outputDir string, store Store, logger *slog.Logger) (*Report, error) {
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return nil, fmt.Errorf("read output dir: %w", err)
	}

	report := &Report{}
	for _, e := range entries {
		if !e.IsDir() || !isSubjectID(e.Name()) {
			continue
		}
		subject := Subject{ID: e.Name()}
		subjectDir := filepath.Join(outputDir, e.Name())

		pages, _ := filepath.Glob(filepath.Join(subjectDir, "*", "markdown", "page_*.md"))
		subject.Parsed = len(pages) > 0

		extractedPath := filepath.Join(subjectDir, e.Name()+"_extracted.json")
		if _, err := os.Stat(extractedPath); err == nil {
			subject.Extracted = true
			subject.ExtractedPath = extractedPath
			subject.AdmissionNumber = readAdmissionNumber(extractedPath)
		}

		if store != nil && subject.Extracted && subject.AdmissionNumber != 0 {
			exists, err := store.Exists(ctx, subject.AdmissionNumber)
			if err != nil {
				logger.Warn("status.exists_check.failed", "subject", subject.ID, "error", err)
			} else {
				subject.Imported = exists
			}
		}

		if subject.Parsed {
			report.Parsed++
		}
		if subject.Extracted {
			report.Extracted++
		}
		if subject.Imported {
			report.Imported++
		}
		report.Subjects = append(report.Subjects, subject)
	}

	sort.Slice(report.Subjects, func(i, j int) bool {
		return report.Subjects[i].ID < report.Subjects[j].ID
	})

	logger.Info("status.scan.ok",
		"subjects", len(report.Subjects),
		"parsed", report.Parsed,
		"extracted", report.Extracted,
		"imported", report.Imported,
	)
	return report, nil
}

func isSubjectID(name string) bool {
	if len(name) != 4 {
		return false
	}
	for _, r := range name {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func readAdmissionNumber(extractedPath string) int64 {
	raw, err := os.ReadFile(extractedPath)
	if err != nil {
		return 0
	}
	var doc struct {
		Internamento struct {
			NumeroInternamento int64 `json:"numero_internamento"`
		} `json:"internamento"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return 0
	}
	return doc.Internamento.NumeroInternamento
}

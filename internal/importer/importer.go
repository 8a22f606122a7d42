// Package importer loads validated extraction JSON into the internamentos
// collection. One extraction file becomes one admission document with the
// patient and clinical sub-records embedded.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/uqregistry/admissions-tracker/internal/repository"
)

type Importer struct {
	repo repository.AdmissionRepository
	log  *slog.Logger
}

func NewImporter(repo repository.AdmissionRepository, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{repo: repo, log: logger}
}

// FileResult is the outcome of importing one extraction file.
type FileResult struct {
	Path            string
	AdmissionNumber int64
	Imported        bool
	Skipped         bool
	Err             string
}

// BatchStats aggregates one import run.
type BatchStats struct {
	Total    int
	Imported int
	Skipped  int
	Failed   int
	Results  []FileResult
}

// BuildDocument assembles the admission document from extraction JSON:
// embedded doente/internamento, clinical arrays defaulted to empty, import
// provenance, and the computed admission-year field.
func BuildDocument(data map[string]any) (bson.M, int64, error) {
	admRaw, ok := data["internamento"].(map[string]any)
	if !ok {
		return nil, 0, fmt.Errorf("extraction missing internamento block")
	}
	patRaw, ok := data["doente"].(map[string]any)
	if !ok {
		return nil, 0, fmt.Errorf("extraction missing doente block")
	}

	admissionNumber, err := asInt64(admRaw["numero_internamento"])
	if err != nil {
		return nil, 0, fmt.Errorf("extraction missing admission number: %w", err)
	}

	patient := bson.M{}
	for k, v := range patRaw {
		patient[k] = v
	}
	patient["patologias"] = arrayOrEmpty(data["patologias"])
	patient["medicacoes"] = arrayOrEmpty(data["medicacoes"])

	doc := bson.M{
		"internamento":  admRaw,
		"doente":        patient,
		"queimaduras":   arrayOrEmpty(data["queimaduras"]),
		"procedimentos": arrayOrEmpty(data["procedimentos"]),
		"antibioticos":  arrayOrEmpty(data["antibioticos"]),
		"infecoes":      arrayOrEmpty(data["infecoes"]),
		"traumas":       arrayOrEmpty(data["traumas"]),

		"source_file":     data["source_file"],
		"extraction_date": data["extraction_date"],
		"import_date":     time.Now().UTC().Format(time.RFC3339),
	}

	if entrada, ok := admRaw["data_entrada"].(string); ok && len(entrada) >= 4 {
		if year, err := strconv.ParseInt(entrada[:4], 10, 64); err == nil {
			doc["ano_internamento"] = year
		}
	}

	return doc, admissionNumber, nil
}

// ImportFile imports one extraction file. Existing admissions are skipped,
// never overwritten.
func (im *Importer) ImportFile(ctx context.Context, path string) FileResult {
	res := FileResult{Path: path}

	raw, err := os.ReadFile(path)
	if err != nil {
		res.Err = fmt.Sprintf("read extraction: %v", err)
		return res
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		res.Err = fmt.Sprintf("decode extraction: %v", err)
		return res
	}

	doc, admissionNumber, err := BuildDocument(data)
	if err != nil {
		res.Err = err.Error()
		return res
	}
	res.AdmissionNumber = admissionNumber

	exists, err := im.repo.Exists(ctx, admissionNumber)
	if err != nil {
		res.Err = err.Error()
		return res
	}
	if exists {
		im.log.Info("import.skip.existing", "admission", admissionNumber, "path", path)
		res.Skipped = true
		return res
	}

	if _, err := im.repo.Insert(ctx, doc); err != nil {
		res.Err = err.Error()
		return res
	}
	im.log.Info("import.ok", "admission", admissionNumber, "path", path)
	res.Imported = true
	return res
}

// ImportDirectory imports every *_extracted.json under root (one level of
// subject folders). Per-file failures are recorded and the batch continues.
func (im *Importer) ImportDirectory(ctx context.Context, root string) (BatchStats, error) {
	matches, err := filepath.Glob(filepath.Join(root, "*", "*_extracted.json"))
	if err != nil {
		return BatchStats{}, fmt.Errorf("scan extractions: %w", err)
	}
	sort.Strings(matches)

	stats := BatchStats{Total: len(matches)}
	for _, path := range matches {
		res := im.ImportFile(ctx, path)
		stats.Results = append(stats.Results, res)
		switch {
		case res.Imported:
			stats.Imported++
		case res.Skipped:
			stats.Skipped++
		default:
			stats.Failed++
			im.log.Error("import.file.failed", "path", path, "error", res.Err)
		}
	}

	im.log.Info("import.batch.ok",
		"total", stats.Total,
		"imported", stats.Imported,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
	)
	return stats, nil
}

func arrayOrEmpty(v any) []any {
	if arr, ok := v.([]any); ok {
		return arr
	}
	return []any{}
}

func asInt64(v any) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	case json.Number:
		return t.Int64()
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, fmt.Errorf("value %v is not numeric", v)
	}
}

package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/uqregistry/admissions-tracker/internal/markdown"
)

// Service runs the extraction stage for subjects that have merged markdown.
type Service struct {
	client *GeminiClient
	outDir string
	log    *slog.Logger
}

func NewService(client *GeminiClient, outputDir string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, outDir: outputDir, log: logger}
}

// ExtractedPath returns where a subject's validated extraction is written.
func (s *Service) ExtractedPath(subject string) string {
	return filepath.Join(s.outDir, subject, subject+"_extracted.json")
}

// ExtractSubject merges the subject's parsed markdown, runs the model, and
// writes the schema-validated JSON document. Existing extractions are not
// redone unless force is set.
func (s *Service) ExtractSubject(ctx context.Context, subject string, force bool) (string, error) {
	outPath := s.ExtractedPath(subject)
	if !force {
		if _, err := os.Stat(outPath); err == nil {
			s.log.Info("extract.skip.existing", "subject", subject)
			return outPath, nil
		}
	}

	mergedPath, err := markdown.MergeSubject(s.outDir, subject)
	if err != nil {
		return "", fmt.Errorf("merge subject %s: %w", subject, err)
	}
	merged, err := os.ReadFile(mergedPath)
	if err != nil {
		return "", fmt.Errorf("read merged markdown: %w", err)
	}

	doc, err := s.client.GenerateJSON(ctx, BuildPrompt(string(merged)))
	if err != nil {
		return "", fmt.Errorf("extract subject %s: %w", subject, err)
	}

	doc, dropped, err := SanitizeOptionalFields(doc)
	if err != nil {
		return "", fmt.Errorf("sanitize extraction for %s: %w", subject, err)
	}
	if len(dropped) > 0 {
		s.log.Warn("extract.sanitize.dropped", "subject", subject, "fields", dropped)
	}

	if err := ValidateExtraction(doc); err != nil {
		return "", fmt.Errorf("subject %s: %w", subject, err)
	}

	doc, err = stampMetadata(doc, filepath.Base(mergedPath))
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(outPath, doc, 0o644); err != nil {
		return "", fmt.Errorf("write extraction: %w", err)
	}
	s.log.Info("extract.ok", "subject", subject, "path", outPath)
	return outPath, nil
}

// BatchStats summarizes one extraction run.
type BatchStats struct {
	Total     int
	Extracted int
	Skipped   int
	Failed    int
	FailedIDs []string
}

// ExtractBatch processes the given subjects sequentially; a failing subject is
// recorded and the batch continues.
func (s *Service) ExtractBatch(ctx context.Context, subjects []string, force bool) BatchStats {
	stats := BatchStats{Total: len(subjects)}
	for _, subject := range subjects {
		outPath := s.ExtractedPath(subject)
		if !force {
			if _, err := os.Stat(outPath); err == nil {
				stats.Skipped++
				continue
			}
		}
		if _, err := s.ExtractSubject(ctx, subject, force); err != nil {
			s.log.Error("extract.subject.failed", "subject", subject, "error", err)
			stats.Failed++
			stats.FailedIDs = append(stats.FailedIDs, subject)
			continue
		}
		stats.Extracted++
	}
	return stats
}

// stampMetadata adds provenance fields to the validated document.
func stampMetadata(doc []byte, sourceFile string) ([]byte, error) {
	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, err
	}
	m["source_file"] = sourceFile
	m["extraction_date"] = time.Now().UTC().Format(time.RFC3339)
	return json.MarshalIndent(m, "", "  ")
}

package parse

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Subjects groups PDF files by the 4-digit subject prefix of their filename.
// Files without the prefix are ignored.
func Subjects(pdfDir string) (map[string][]string, error) {
	entries, err := os.ReadDir(pdfDir)
	if err != nil {
		return nil, fmt.Errorf("read pdf dir: %w", err)
	}

	subjects := make(map[string][]string)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.EqualFold(filepath.Ext(name), ".pdf") {
			continue
		}
		if len(name) < 4 || !isDigits(name[:4]) {
			continue
		}
		subject := name[:4]
		subjects[subject] = append(subjects[subject], filepath.Join(pdfDir, name))
	}
	for _, files := range subjects {
		sort.Strings(files)
	}
	return subjects, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// SubjectStats summarizes one parsing run over a pdf directory.
type SubjectStats struct {
	Subjects  int
	Parsed    int
	Skipped   int
	Failed    int
	FailedIDs []string
}

// ProcessDirectory parses every subject's PDFs and writes per-page markdown
// under outputDir/<subject>/<file>/markdown/page_N.md. Subjects whose output
// already exists are skipped; a failing subject is recorded and the run
// continues.
func (c *Client) ProcessDirectory(ctx context.Context, pdfDir, outputDir string) (SubjectStats, error) {
	subjects, err := Subjects(pdfDir)
	if err != nil {
		return SubjectStats{}, err
	}

	stats := SubjectStats{Subjects: len(subjects)}

	ordered := make([]string, 0, len(subjects))
	for s := range subjects {
		ordered = append(ordered, s)
	}
	sort.Strings(ordered)

	for _, subject := range ordered {
		for _, pdfPath := range subjects[subject] {
			stem := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
			fileDir := filepath.Join(outputDir, subject, stem)

			if hasMarkdown(fileDir) {
				c.log.Info("parse.skip.existing", "subject", subject, "file", stem)
				stats.Skipped++
				continue
			}

			res, err := c.ParseFile(ctx, pdfPath)
			if err != nil {
				c.log.Error("parse.subject.failed", "subject", subject, "file", stem, "error", err)
				stats.Failed++
				stats.FailedIDs = append(stats.FailedIDs, subject)
				continue
			}
			if err := SavePages(fileDir, res.Pages); err != nil {
				c.log.Error("parse.save.failed", "subject", subject, "file", stem, "error", err)
				stats.Failed++
				stats.FailedIDs = append(stats.FailedIDs, subject)
				continue
			}
			stats.Parsed++
		}
	}
	return stats, nil
}

// SavePages persists per-page markdown and text artifacts for one parsed file.
func SavePages(fileDir string, pages []Page) error {
	mdDir := filepath.Join(fileDir, "markdown")
	textDir := filepath.Join(fileDir, "text")
	for _, dir := range []string{mdDir, textDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	for i, page := range pages {
		n := page.Number
		if n == 0 {
			n = i + 1
		}
		mdPath := filepath.Join(mdDir, fmt.Sprintf("page_%d.md", n))
		if err := os.WriteFile(mdPath, []byte(page.Markdown), 0o644); err != nil {
			return fmt.Errorf("write page markdown: %w", err)
		}
		if page.Text != "" {
			txtPath := filepath.Join(textDir, fmt.Sprintf("page_%d.txt", n))
			if err := os.WriteFile(txtPath, []byte(page.Text), 0o644); err != nil {
				return fmt.Errorf("write page text: %w", err)
			}
		}
	}
	return nil
}

func hasMarkdown(fileDir string) bool {
	matches, err := filepath.Glob(filepath.Join(fileDir, "markdown", "page_*.md"))
	return err == nil && len(matches) > 0
}

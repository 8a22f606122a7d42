// Package markdown merges the per-page markdown artifacts of one subject into
// a single cleaned document ready for extraction.
package markdown

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	pageFileRe = regexp.MustCompile(`^page_(\d+)\.md$`)
	pageNumRe  = regexp.MustCompile(`^(?:page\s+)?\d+(?:\s*/\s*\d+)?$`)
)

// MergePages reads page_N.md files from dir and concatenates them in page
// order, separated by a blank line.
func MergePages(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read markdown dir: %w", err)
	}

	type page struct {
		n    int
		path string
	}
	var pages []page
	for _, e := range entries {
		m := pageFileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		pages = append(pages, page{n: n, path: filepath.Join(dir, e.Name())})
	}
	if len(pages) == 0 {
		return "", fmt.Errorf("no page markdown found in %s", dir)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].n < pages[j].n })

	var sb strings.Builder
	for i, p := range pages {
		data, err := os.ReadFile(p.path)
		if err != nil {
			return "", fmt.Errorf("read page %d: %w", p.n, err)
		}
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.Write(data)
	}
	return sb.String(), nil
}

// Clean strips parsing artifacts from merged markdown: page-number lines,
// horizontal-rule page breaks, trailing whitespace, and runs of blank lines.
// Idempotent.
func Clean(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")

	var out []string
	blank := 0
	for _, line := range lines {
		line = strings.TrimRight(strings.ReplaceAll(line, "\u00a0", " "), " \t")
		trimmed := strings.TrimSpace(line)

		if isPageBreak(trimmed) || pageNumRe.MatchString(strings.ToLower(trimmed)) {
			continue
		}

		if trimmed == "" {
			blank++
			if blank > 1 {
				continue
			}
			out = append(out, "")
			continue
		}
		blank = 0
		out = append(out, line)
	}

	// trim leading/trailing blanks
	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n") + "\n"
}

func isPageBreak(line string) bool {
	if len(line) < 3 {
		return false
	}
	for _, r := range line {
		if r != '-' {
			return false
		}
	}
	return true
}

// MergeSubject merges and cleans every parsed file of a subject directory
// (outputDir/<subject>/<file>/markdown) into one document, and writes it to
// outputDir/<subject>/<subject>_merged.md. Returns the written path.
func MergeSubject(outputDir, subject string) (string, error) {
	subjectDir := filepath.Join(outputDir, subject)
	entries, err := os.ReadDir(subjectDir)
	if err != nil {
		return "", fmt.Errorf("read subject dir: %w", err)
	}

	var parts []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		mdDir := filepath.Join(subjectDir, e.Name(), "markdown")
		if _, err := os.Stat(mdDir); err != nil {
			continue
		}
		merged, err := MergePages(mdDir)
		if err != nil {
			return "", err
		}
		parts = append(parts, merged)
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("subject %s has no parsed markdown", subject)
	}

	doc := Clean(strings.Join(parts, "\n\n"))
	outPath := filepath.Join(subjectDir, subject+"_merged.md")
	if err := os.WriteFile(outPath, []byte(doc), 0o644); err != nil {
		return "", fmt.Errorf("write merged markdown: %w", err)
	}
	return outPath, nil
}

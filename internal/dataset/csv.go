// Package dataset loads the authoritative patient registry CSV. The file is
// read once per run into an immutable index keyed by admission number; the
// index is the join side of every reconciliation pass.
package dataset

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Column names are a fixed contract with the registry export.
const (
	ColID            = "ID"
	ColYear          = "year"
	ColProcessNumber = "processo"
	ColName          = "nome"
	ColAdmissionDate = "data_ent"
	ColDischargeDate = "data_alta"
	ColDestination   = "destino"
	ColBirthDate     = "data_nasc"
	ColBurnDate      = "data_queim"
)

// Row is one registry row, raw values as exported. Immutable after load.
type Row struct {
	AdmissionNumber int64
	Year            string
	ProcessNumber   string
	Name            string
	AdmissionDate   string
	DischargeDate   string
	Destination     string
	BirthDate       string
	BurnDate        string
}

// Index maps admission number to its registry row.
type Index map[int64]Row

// LoadResult reports what the loader did with the file.
type LoadResult struct {
	Rows    Index
	Total   int
	Skipped int
}

// Load reads the registry CSV at path into an index keyed by admission number.
// Rows with a missing or non-numeric key are counted as skipped, not fatal.
func Load(path string, logger *slog.Logger) (*LoadResult, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open registry csv: %w", err)
	}
	defer f.Close()

	res, err := Read(bufio.NewReaderSize(f, 64*1024))
	if err != nil {
		return nil, err
	}

	logger.Info("dataset.load.ok", "path", path, "rows", len(res.Rows), "skipped", res.Skipped)
	return res, nil
}

// Read parses registry rows from r. Split out from Load so tests can feed
// in-memory data.
func Read(r io.Reader) (*LoadResult, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		colIdx[strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))] = i
	}
	for _, required := range []string{ColID, ColYear, ColProcessNumber, ColName,
		ColAdmissionDate, ColDischargeDate, ColDestination, ColBirthDate, ColBurnDate} {
		if _, ok := colIdx[required]; !ok {
			return nil, fmt.Errorf("registry csv missing column %q", required)
		}
	}

	res := &LoadResult{Rows: make(Index)}
	field := func(rec []string, col string) string {
		i := colIdx[col]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// ragged or malformed line: skip, keep reading
			res.Skipped++
			continue
		}
		res.Total++

		key, err := strconv.ParseInt(field(rec, ColID), 10, 64)
		if err != nil {
			res.Skipped++
			continue
		}

		res.Rows[key] = Row{
			AdmissionNumber: key,
			Year:            field(rec, ColYear),
			ProcessNumber:   field(rec, ColProcessNumber),
			Name:            field(rec, ColName),
			AdmissionDate:   field(rec, ColAdmissionDate),
			DischargeDate:   field(rec, ColDischargeDate),
			Destination:     field(rec, ColDestination),
			BirthDate:       field(rec, ColBirthDate),
			BurnDate:        field(rec, ColBurnDate),
		}
	}

	return res, nil
}

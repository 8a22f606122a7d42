// Package update implements the selective update workflow: an interactive
// review of discrepant records followed by a single atomic write per record.
// It is the only package that mutates the collection.
package update

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/uqregistry/admissions-tracker/internal/console"
	"github.com/uqregistry/admissions-tracker/internal/reconcile"
)

// Selection is the operator's choice of fields to commit for one record.
type Selection struct {
	AdmissionNumber int64
	Fields          []reconcile.FieldDiscrepancy
}

// SelectUpdates walks the discrepant records and asks the operator what to do
// with each: update all fields, update a subset, skip, or quit the review.
// Quit ends the loop but keeps the selections made so far. Invalid subset
// input is rejected and the prompt re-issued; out-of-range indices are
// ignored with a warning.
func SelectUpdates(op console.Operator, results []reconcile.RecordResult) ([]Selection, error) {
	var selections []Selection

	discrepant := make([]reconcile.RecordResult, 0, len(results))
	for _, res := range results {
		if res.HasDiscrepancies {
			discrepant = append(discrepant, res)
		}
	}
	if len(discrepant) == 0 {
		op.Printf("all records match the registry, nothing to update\n")
		return nil, nil
	}

	op.Printf("found %d record(s) with discrepancies\n\n", len(discrepant))

review:
	for i, res := range discrepant {
		mismatches := reconcile.Mismatches(res.Comparisons)

		op.Printf("record %d of %d — admission %d\n", i+1, len(discrepant), res.AdmissionNumber)
		for j, m := range mismatches {
			op.Printf("  %2d) %-20s db=%q csv=%q\n", j+1, m.Field, m.DBValue, m.CSVValue)
		}
		op.Printf("  a=update all, s=select fields, n=skip, q=quit (keep selections)\n")

		choice, err := op.Choose("what would you like to do?", []string{"a", "s", "n", "q"}, "n")
		if err != nil {
			return selections, err
		}

		switch choice {
		case "q":
			op.Printf("stopping review, %d selection(s) kept\n", len(selections))
			break review
		case "n":
			continue
		case "a":
			selections = append(selections, Selection{
				AdmissionNumber: res.AdmissionNumber,
				Fields:          mismatches,
			})
			op.Printf("queued all %d field(s)\n", len(mismatches))
		case "s":
			chosen, err := askSubset(op, mismatches)
			if err != nil {
				return selections, err
			}
			if len(chosen) == 0 {
				op.Printf("no valid fields selected, skipping record\n")
				continue
			}
			selections = append(selections, Selection{
				AdmissionNumber: res.AdmissionNumber,
				Fields:          chosen,
			})
			op.Printf("queued %d field(s)\n", len(chosen))
		}
	}

	return selections, nil
}

// askSubset prompts for a comma-separated index list until it parses. "all"
// selects every listed field.
func askSubset(op console.Operator, mismatches []reconcile.FieldDiscrepancy) ([]reconcile.FieldDiscrepancy, error) {
	for {
		line, err := op.AskLine(fmt.Sprintf("fields to update (1-%d, comma-separated, or 'all')", len(mismatches)))
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(strings.TrimSpace(line), "all") {
			return mismatches, nil
		}

		indices, perr := parseIndexList(line)
		if perr != nil {
			op.Printf("invalid input %q: %v\n", line, perr)
			continue
		}

		var chosen []reconcile.FieldDiscrepancy
		seen := make(map[int]struct{})
		for _, n := range indices {
			if n < 1 || n > len(mismatches) {
				op.Printf("ignoring out-of-range index %d\n", n)
				continue
			}
			if _, dup := seen[n]; dup {
				continue
			}
			seen[n] = struct{}{}
			chosen = append(chosen, mismatches[n-1])
		}
		return chosen, nil
	}
}

func parseIndexList(line string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(line, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", part)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty selection")
	}
	return out, nil
}

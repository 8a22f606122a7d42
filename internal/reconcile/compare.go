package reconcile

import (
	"strconv"

	"github.com/uqregistry/admissions-tracker/internal/dataset"
	"github.com/uqregistry/admissions-tracker/internal/entity"
)

// FieldDiscrepancy is the per-field outcome of one record/row comparison.
// Match is carried even for matching fields so callers can compute rates.
type FieldDiscrepancy struct {
	Field     string
	CSVColumn string
	DBValue   string // normalized
	CSVValue  string // normalized
	CSVRaw    string // as exported, used when building update payloads
	Match     bool
}

// Compare evaluates the fixed field set for one record against its registry
// row. Each field is evaluated independently; order does not affect the match
// decisions. A record missing nested structure compares as all-fields-null.
func Compare(record *entity.AdmissionRecord, row dataset.Row) []FieldDiscrepancy {
	out := make([]FieldDiscrepancy, 0, len(Fields))
	for _, fd := range Fields {
		dbVal := fd.RecordValue(record)
		csvRaw := fd.RowValue(row)

		var d FieldDiscrepancy
		switch fd.Kind {
		case KindDate:
			dbNorm := NormalizeDate(dbVal)
			csvNorm := NormalizeDate(csvRaw)
			d = FieldDiscrepancy{DBValue: dbNorm, CSVValue: csvNorm, Match: dbNorm == csvNorm}
		case KindNumber:
			dbNum := ToInt(dbVal)
			csvNum := ToInt(csvRaw)
			d = FieldDiscrepancy{
				DBValue:  formatInt(dbNum),
				CSVValue: formatInt(csvNum),
				Match:    intEqual(dbNum, csvNum),
			}
		default:
			dbNorm := NormalizeText(dbVal)
			csvNorm := NormalizeText(csvRaw)
			d = FieldDiscrepancy{DBValue: dbNorm, CSVValue: csvNorm, Match: dbNorm == csvNorm}
		}

		d.Field = fd.Name
		d.CSVColumn = fd.CSVColumn
		d.CSVRaw = csvRaw
		out = append(out, d)
	}
	return out
}

// Mismatches filters a comparison down to the discrepant fields.
func Mismatches(comparisons []FieldDiscrepancy) []FieldDiscrepancy {
	var out []FieldDiscrepancy
	for _, c := range comparisons {
		if !c.Match {
			out = append(out, c)
		}
	}
	return out
}

func intEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func formatInt(n *int64) string {
	if n == nil {
		return ""
	}
	return strconv.FormatInt(*n, 10)
}

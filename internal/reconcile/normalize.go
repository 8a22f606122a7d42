package reconcile

import (
	"strconv"
	"strings"
	"time"

	"github.com/uqregistry/admissions-tracker/internal/entity"
)

// canonical date layout for every comparison
const dateLayout = "2006-01-02"

// accepted input layouts, day-first and year-first with either separator
var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"2006/01/02",
}

// NormalizeDate canonicalizes a date value to "YYYY-MM-DD". It accepts raw
// strings, time.Time and entity.FlexDate values. Empty, whitespace-only or
// unparseable input yields "" — absence of data is not an error here.
// Idempotent: a canonical string normalizes to itself.
func NormalizeDate(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format(dateLayout)
	case *time.Time:
		if t == nil {
			return ""
		}
		return NormalizeDate(*t)
	case entity.FlexDate:
		if t.IsZero() {
			return ""
		}
		return NormalizeDate(t.Value())
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return ""
		}
		for _, layout := range dateLayouts {
			if d, err := time.Parse(layout, s); err == nil {
				return d.Format(dateLayout)
			}
		}
		return ""
	default:
		return ""
	}
}

// NormalizeText lower-cases and trims surrounding whitespace. Internal spacing
// and punctuation are preserved. Nil yields "".
func NormalizeText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.ToLower(strings.TrimSpace(t))
	default:
		return ""
	}
}

// ToInt coerces a value to an integer, returning nil on empty or non-numeric
// input. Never errors.
func ToInt(v any) *int64 {
	switch t := v.(type) {
	case nil:
		return nil
	case int:
		n := int64(t)
		return &n
	case int32:
		n := int64(t)
		return &n
	case int64:
		n := t
		return &n
	case *int64:
		if t == nil {
			return nil
		}
		n := *t
		return &n
	case float64:
		n := int64(t)
		return &n
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil
		}
		return &n
	default:
		return nil
	}
}

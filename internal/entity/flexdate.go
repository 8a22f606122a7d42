package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// FlexDate is a date field that tolerates both storage representations found in
// the collection: plain "YYYY-MM-DD" strings written by the extraction import,
// and BSON datetimes written by registry updates.
type FlexDate struct {
	str    string
	ts     time.Time
	isTime bool
}

// NewFlexDateString returns a FlexDate backed by a raw string value.
func NewFlexDateString(s string) FlexDate {
	return FlexDate{str: s}
}

// NewFlexDateTime returns a FlexDate backed by a timestamp.
func NewFlexDateTime(t time.Time) FlexDate {
	return FlexDate{ts: t.UTC(), isTime: true}
}

// Value returns the underlying value: a time.Time, a string, or nil when unset.
func (d FlexDate) Value() any {
	if d.isTime {
		return d.ts
	}
	if d.str == "" {
		return nil
	}
	return d.str
}

// IsZero reports whether no date is present.
func (d FlexDate) IsZero() bool {
	return !d.isTime && d.str == ""
}

func (d *FlexDate) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeString:
		s, ok := rv.StringValueOK()
		if ok {
			d.str = s
		}
	case bson.TypeDateTime:
		d.ts = rv.Time().UTC()
		d.isTime = true
	default:
		// null or unexpected type: leave unset rather than failing the
		// whole document decode
	}
	return nil
}

func (d FlexDate) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if d.isTime {
		t, data, err := bson.MarshalValue(d.ts)
		return t, data, err
	}
	t, data, err := bson.MarshalValue(d.str)
	return t, data, err
}

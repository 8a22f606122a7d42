package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uqregistry/admissions-tracker/internal/dataset"
	"github.com/uqregistry/admissions-tracker/internal/entity"
)

func i64(n int64) *int64 { return &n }

func testRecord() *entity.AdmissionRecord {
	return &entity.AdmissionRecord{
		Year: i64(2023),
		Patient: &entity.Patient{
			Name:          "Maria Silva",
			ProcessNumber: i64(12345),
			BirthDate:     entity.NewFlexDateString("1960-01-15"),
		},
		Admission: &entity.Admission{
			AdmissionNumber: 2305,
			AdmissionDate:   entity.NewFlexDateString("2023-02-01"),
			DischargeDate:   entity.NewFlexDateTime(time.Date(2023, 2, 20, 0, 0, 0, 0, time.UTC)),
			Destination:     "Domicílio",
		},
		Burns: []entity.Burn{{Date: entity.NewFlexDateString("2023-01-31")}},
	}
}

func matchingRow() dataset.Row {
	return dataset.Row{
		AdmissionNumber: 2305,
		Year:            "2023",
		ProcessNumber:   "12345",
		Name:            "maria silva",
		AdmissionDate:   "01/02/2023",
		DischargeDate:   "20-02-2023",
		Destination:     "DOMICÍLIO",
		BirthDate:       "1960-01-15",
		BurnDate:        "31/01/2023",
	}
}

func byField(t *testing.T, comparisons []FieldDiscrepancy, name string) FieldDiscrepancy {
	t.Helper()
	for _, c := range comparisons {
		if c.Field == name {
			return c
		}
	}
	t.Fatalf("field %q not in comparison", name)
	return FieldDiscrepancy{}
}

func TestComparePerfectMatch(t *testing.T) {
	comparisons := Compare(testRecord(), matchingRow())
	require.Len(t, comparisons, len(Fields))
	for _, c := range comparisons {
		assert.True(t, c.Match, "field %s: db=%q csv=%q", c.Field, c.DBValue, c.CSVValue)
	}
}

func TestCompareDetectsMismatches(t *testing.T) {
	row := matchingRow()
	row.Name = "Maria Santos"
	row.AdmissionDate = "02/02/2023"

	comparisons := Compare(testRecord(), row)
	mismatches := Mismatches(comparisons)
	require.Len(t, mismatches, 2)

	name := byField(t, comparisons, "nome")
	assert.False(t, name.Match)
	assert.Equal(t, "maria silva", name.DBValue)
	assert.Equal(t, "maria santos", name.CSVValue)
	assert.Equal(t, "Maria Santos", name.CSVRaw, "raw registry value is preserved for updates")

	date := byField(t, comparisons, "data_entrada")
	assert.False(t, date.Match)
	assert.Equal(t, "2023-02-01", date.DBValue)
	assert.Equal(t, "2023-02-02", date.CSVValue)
}

func TestCompareBothNullMatches(t *testing.T) {
	rec := testRecord()
	rec.Admission.DischargeDate = entity.FlexDate{}
	row := matchingRow()
	row.DischargeDate = ""

	c := byField(t, Compare(rec, row), "data_alta")
	assert.True(t, c.Match)
	assert.Equal(t, "", c.DBValue)
	assert.Equal(t, "", c.CSVValue)
}

func TestCompareNumberNullSemantics(t *testing.T) {
	rec := testRecord()
	rec.Patient.ProcessNumber = nil
	row := matchingRow()

	c := byField(t, Compare(rec, row), "numero_processo")
	assert.False(t, c.Match, "null vs present is a mismatch")
	assert.Equal(t, "", c.DBValue)
	assert.Equal(t, "12345", c.CSVValue)

	row.ProcessNumber = ""
	c = byField(t, Compare(rec, row), "numero_processo")
	assert.True(t, c.Match, "null vs null matches")
}

func TestCompareMissingNestedStructure(t *testing.T) {
	rec := &entity.AdmissionRecord{}
	row := matchingRow()

	comparisons := Compare(rec, row)
	require.Len(t, comparisons, len(Fields))
	for _, c := range comparisons {
		assert.Equal(t, "", c.DBValue, "field %s", c.Field)
	}
}

func TestCompareYearFallsBackToAdmissionNumber(t *testing.T) {
	rec := testRecord()
	rec.Year = nil // admission number 2305 carries the year

	c := byField(t, Compare(rec, matchingRow()), "ano_internamento")
	assert.True(t, c.Match)
	assert.Equal(t, "2023", c.DBValue)
}

func TestCompareOrderIndependent(t *testing.T) {
	row := matchingRow()
	row.Name = "Someone Else"

	first := Compare(testRecord(), row)
	second := Compare(testRecord(), row)
	assert.Equal(t, first, second)
}

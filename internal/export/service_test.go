package export

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/uqregistry/admissions-tracker/internal/entity"
)

type fakeRepo struct {
	records []*entity.AdmissionRecord
}

func (f *fakeRepo) FindAll(context.Context) ([]*entity.AdmissionRecord, error) {
	return f.records, nil
}
func (f *fakeRepo) GetByAdmissionNumber(context.Context, int64) (*entity.AdmissionRecord, error) {
	return nil, nil
}
func (f *fakeRepo) Exists(context.Context, int64) (bool, error)       { return false, nil }
func (f *fakeRepo) Count(context.Context) (int64, error)              { return int64(len(f.records)), nil }
func (f *fakeRepo) Insert(context.Context, bson.M) (string, error)    { return "", nil }
func (f *fakeRepo) ApplyFieldUpdate(context.Context, int64, bson.M) (int64, error) {
	return 0, nil
}
func (f *fakeRepo) EnsureIndexes(context.Context) error { return nil }

func i64(n int64) *int64 { return &n }

func TestExportAdmissionsXLSX(t *testing.T) {
	repo := &fakeRepo{records: []*entity.AdmissionRecord{
		{
			Year: i64(2023),
			Patient: &entity.Patient{
				Name:          "Maria Silva",
				ProcessNumber: i64(12345),
				BirthDate:     entity.NewFlexDateString("1960-01-15"),
			},
			Admission: &entity.Admission{
				AdmissionNumber: 2305,
				AdmissionDate:   entity.NewFlexDateString("2023-02-01"),
				Destination:     "Domicílio",
			},
			Burns:          []entity.Burn{{Date: entity.NewFlexDateString("31/01/2023")}},
			UpdatedFromCSV: true,
		},
		{
			Admission: &entity.Admission{AdmissionNumber: 2306},
		},
	}}

	data, err := NewService(repo, nil).ExportAdmissionsXLSX(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Admissions")
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus two records")

	assert.Equal(t, "Admission Number", rows[0][0])
	assert.Equal(t, "2305", rows[1][0])
	assert.Equal(t, "Maria Silva", rows[1][3])
	assert.Equal(t, "2023-02-01", rows[1][4])
	assert.Equal(t, "2023-01-31", rows[1][8], "dates are canonicalized on export")
	assert.Equal(t, "2306", rows[2][0])
}

package status

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	known map[int64]bool
}

func (f *fakeStore) Exists(_ context.Context, admissionNumber int64) (bool, error) {
	return f.known[admissionNumber], nil
}

func seedSubject(t *testing.T, outputDir, subject string, parsed, extracted bool) {
	t.Helper()
	subjectDir := filepath.Join(outputDir, subject)
	require.NoError(t, os.MkdirAll(subjectDir, 0o755))

	if parsed {
		mdDir := filepath.Join(subjectDir, subject+"_nota", "markdown")
		require.NoError(t, os.MkdirAll(mdDir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(mdDir, "page_1.md"), []byte("x"), 0o644))
	}
	if extracted {
		doc := `{"internamento":{"numero_internamento":` + subject + `}}`
		require.NoError(t, os.WriteFile(
			filepath.Join(subjectDir, subject+"_extracted.json"), []byte(doc), 0o644))
	}
}

func TestScanCheckpoints(t *testing.T) {
	outputDir := t.TempDir()
	seedSubject(t, outputDir, "2305", true, true)  // imported
	seedSubject(t, outputDir, "2306", true, true)  // extracted, not imported
	seedSubject(t, outputDir, "2307", true, false) // parsed only
	require.NoError(t, os.MkdirAll(filepath.Join(outputDir, "notes"), 0o755))

	store := &fakeStore{known: map[int64]bool{2305: true}}
	report, err := Scan(context.Background(), outputDir, store, nil)
	require.NoError(t, err)

	require.Len(t, report.Subjects, 3, "non-subject folders are ignored")
	assert.Equal(t, 3, report.Parsed)
	assert.Equal(t, 2, report.Extracted)
	assert.Equal(t, 1, report.Imported)

	assert.Equal(t, []string{"2307"}, report.NotExtracted())
	assert.Equal(t, []string{"2306"}, report.NotImported())

	first := report.Subjects[0]
	assert.Equal(t, "2305", first.ID)
	assert.Equal(t, int64(2305), first.AdmissionNumber)
	assert.True(t, first.Imported)
}

func TestScanWithoutStore(t *testing.T) {
	outputDir := t.TempDir()
	seedSubject(t, outputDir, "2305", true, true)

	report, err := Scan(context.Background(), outputDir, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Imported, "import status unknown without a store")
	assert.Equal(t, []string{"2305"}, report.NotImported())
}

func TestScanMissingDir(t *testing.T) {
	_, err := Scan(context.Background(), filepath.Join(t.TempDir(), "missing"), nil, nil)
	assert.Error(t, err)
}

func TestIsSubjectID(t *testing.T) {
	assert.True(t, isSubjectID("2305"))
	assert.False(t, isSubjectID("235"))
	assert.False(t, isSubjectID("23050"))
	assert.False(t, isSubjectID("23a5"))
}

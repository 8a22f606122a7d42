package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func extractionData() map[string]any {
	return map[string]any{
		"doente": map[string]any{
			"nome":            "Maria Silva",
			"numero_processo": float64(12345),
			"data_nascimento": "1960-01-15",
			"sexo":            "F",
		},
		"internamento": map[string]any{
			"numero_internamento": float64(2305),
			"data_entrada":        "2023-02-01",
		},
		"queimaduras": []any{
			map[string]any{"local_anatomico": "HAND"},
		},
		"source_file":     "2305_merged.md",
		"extraction_date": "2024-03-01T10:30:00Z",
	}
}

func TestBuildDocument(t *testing.T) {
	doc, admissionNumber, err := BuildDocument(extractionData())
	require.NoError(t, err)
	assert.Equal(t, int64(2305), admissionNumber)

	assert.Equal(t, int64(2023), doc["ano_internamento"], "year computed from data_entrada")
	assert.Equal(t, "2305_merged.md", doc["source_file"])
	assert.NotEmpty(t, doc["import_date"])

	patient, ok := doc["doente"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, "Maria Silva", patient["nome"])
	assert.Equal(t, []any{}, patient["patologias"], "missing clinical arrays default to empty")
	assert.Equal(t, []any{}, patient["medicacoes"])

	burns, ok := doc["queimaduras"].([]any)
	require.True(t, ok)
	assert.Len(t, burns, 1)
	assert.Equal(t, []any{}, doc["procedimentos"])
}

func TestBuildDocumentMissingBlocks(t *testing.T) {
	data := extractionData()
	delete(data, "internamento")
	_, _, err := BuildDocument(data)
	assert.Error(t, err)

	data = extractionData()
	delete(data, "doente")
	_, _, err = BuildDocument(data)
	assert.Error(t, err)
}

func TestBuildDocumentMissingAdmissionNumber(t *testing.T) {
	data := extractionData()
	delete(data["internamento"].(map[string]any), "numero_internamento")
	_, _, err := BuildDocument(data)
	assert.Error(t, err)
}

func TestBuildDocumentNoYearWithoutEntryDate(t *testing.T) {
	data := extractionData()
	delete(data["internamento"].(map[string]any), "data_entrada")

	doc, _, err := BuildDocument(data)
	require.NoError(t, err)
	_, present := doc["ano_internamento"]
	assert.False(t, present)
}

func TestAsInt64(t *testing.T) {
	for _, v := range []any{float64(2305), int64(2305), 2305, "2305"} {
		n, err := asInt64(v)
		require.NoError(t, err, "value %v", v)
		assert.Equal(t, int64(2305), n)
	}
	_, err := asInt64(nil)
	assert.Error(t, err)
	_, err = asInt64("abc")
	assert.Error(t, err)
}

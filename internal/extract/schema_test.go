package extract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validExtraction() map[string]any {
	return map[string]any{
		"doente": map[string]any{
			"nome":            "Maria Silva",
			"numero_processo": 12345,
			"data_nascimento": "1960-01-15",
			"sexo":            "F",
		},
		"internamento": map[string]any{
			"numero_internamento": 2305,
			"data_entrada":        "2023-02-01",
			"data_alta":           "2023-02-20",
			"destino_alta":        "Domicílio",
		},
		"queimaduras": []any{
			map[string]any{
				"local_anatomico": "HAND",
				"grau_maximo":     "SEGUNDO_PROFUNDO",
				"percentagem":     4.5,
				"data":            "2023-01-31",
			},
		},
	}
}

func marshal(t *testing.T, v any) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func TestValidateExtractionAcceptsValidDocument(t *testing.T) {
	assert.NoError(t, ValidateExtraction(marshal(t, validExtraction())))
}

func TestValidateExtractionRejectsMissingRequired(t *testing.T) {
	doc := validExtraction()
	delete(doc["doente"].(map[string]any), "nome")

	err := ValidateExtraction(marshal(t, doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nome")
}

func TestValidateExtractionRejectsBadDate(t *testing.T) {
	doc := validExtraction()
	doc["internamento"].(map[string]any)["data_entrada"] = "01/02/2023"

	assert.Error(t, ValidateExtraction(marshal(t, doc)))
}

func TestValidateExtractionRejectsUnknownEnum(t *testing.T) {
	doc := validExtraction()
	doc["queimaduras"].([]any)[0].(map[string]any)["grau_maximo"] = "QUINTO"

	assert.Error(t, ValidateExtraction(marshal(t, doc)))
}

func TestValidateExtractionRejectsNonJSON(t *testing.T) {
	assert.Error(t, ValidateExtraction([]byte("not json")))
}

func TestSanitizeDropsBadOptionalDates(t *testing.T) {
	doc := validExtraction()
	doc["internamento"].(map[string]any)["data_alta"] = "desconhecida"
	doc["queimaduras"].([]any)[0].(map[string]any)["data"] = ""

	out, dropped, err := SanitizeOptionalFields(marshal(t, doc))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"internamento.data_alta", "queimaduras.data"}, dropped)
	assert.NoError(t, ValidateExtraction(out), "sanitized document validates")

	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))
	_, present := m["internamento"].(map[string]any)["data_alta"]
	assert.False(t, present)
}

func TestSanitizeUppercasesEnums(t *testing.T) {
	doc := validExtraction()
	doc["doente"].(map[string]any)["sexo"] = " f "
	doc["queimaduras"].([]any)[0].(map[string]any)["local_anatomico"] = "hand"

	out, _, err := SanitizeOptionalFields(marshal(t, doc))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))
	assert.Equal(t, "F", m["doente"].(map[string]any)["sexo"])
	assert.Equal(t, "HAND", m["queimaduras"].([]any)[0].(map[string]any)["local_anatomico"])
	assert.NoError(t, ValidateExtraction(out))
}

func TestSanitizeNeverTouchesRequiredDates(t *testing.T) {
	doc := validExtraction()
	doc["internamento"].(map[string]any)["data_entrada"] = "bogus"

	out, dropped, err := SanitizeOptionalFields(marshal(t, doc))
	require.NoError(t, err)
	assert.NotContains(t, dropped, "internamento.data_entrada")
	assert.Error(t, ValidateExtraction(out), "a broken required date still fails validation")
}

func TestBuildPromptEmbedsSchemaAndRecord(t *testing.T) {
	prompt := BuildPrompt("## Nota de alta\nconteúdo")
	assert.Contains(t, prompt, "numero_internamento")
	assert.Contains(t, prompt, "SEGUNDO_PROFUNDO")
	assert.Contains(t, prompt, "## Nota de alta")
}

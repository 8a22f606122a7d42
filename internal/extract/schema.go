package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const datePattern = `^\d{4}-\d{2}-\d{2}$`

var anatomicalLocations = []string{
	"HEAD", "FACE", "CERVICAL", "CHEST", "ABDOMEN", "BACK",
	"PERINEUM", "UPPER_LIMB", "LOWER_LIMB", "HAND", "FOOT",
}

var burnDegrees = []string{
	"PRIMEIRO", "SEGUNDO_SUPERFICIAL", "SEGUNDO_PROFUNDO", "TERCEIRO", "QUARTO",
}

// BuildAdmissionJSONSchema returns the JSON-Schema constraining the model's
// structured output. It is passed along with the prompt and enforced locally
// before anything is written to disk.
func BuildAdmissionJSONSchema() map[string]any {
	dateProp := func() map[string]any {
		return map[string]any{"type": "string", "pattern": datePattern}
	}
	optionalDateProp := func() map[string]any {
		return map[string]any{
			"type":    []string{"string", "null"},
			"pattern": datePattern,
		}
	}

	patient := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"nome":            map[string]any{"type": "string", "minLength": 1},
			"numero_processo": map[string]any{"type": "integer"},
			"data_nascimento": dateProp(),
			"sexo":            map[string]any{"type": "string", "enum": []string{"M", "F"}},
			"morada":          map[string]any{"type": "string"},
		},
		"required": []string{"nome", "numero_processo", "data_nascimento", "sexo"},
	}

	admission := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"numero_internamento":  map[string]any{"type": "integer"},
			"data_entrada":         dateProp(),
			"data_alta":            optionalDateProp(),
			"data_queimadura":      optionalDateProp(),
			"origem_entrada":       map[string]any{"type": []string{"string", "null"}},
			"destino_alta":         map[string]any{"type": []string{"string", "null"}},
			"ASCQ_total":           map[string]any{"type": []string{"number", "null"}},
			"lesao_inalatoria":     map[string]any{"type": []string{"string", "null"}},
			"mecanismo_queimadura": map[string]any{"type": []string{"string", "null"}},
			"agente_queimadura":    map[string]any{"type": []string{"string", "null"}},
			"tipo_acidente":        map[string]any{"type": []string{"string", "null"}},
		},
		"required": []string{"numero_internamento", "data_entrada"},
	}

	burn := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"local_anatomico": map[string]any{"type": "string", "enum": anatomicalLocations},
			"grau_maximo":     map[string]any{"type": "string", "enum": burnDegrees},
			"percentagem":     map[string]any{"type": []string{"number", "null"}},
			"data":            optionalDateProp(),
			"nota":            map[string]any{"type": []string{"string", "null"}},
		},
		"required": []string{"local_anatomico"},
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"doente":       patient,
			"internamento": admission,
			"queimaduras":  map[string]any{"type": "array", "items": burn},
			"patologias":   map[string]any{"type": "array"},
			"medicacoes":   map[string]any{"type": "array"},
		},
		"required": []string{"doente", "internamento"},
	}
}

var compiledSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	raw, err := json.Marshal(BuildAdmissionJSONSchema())
	if err != nil {
		panic(fmt.Sprintf("marshal admission schema: %v", err))
	}
	sch, err := jsonschema.CompileString("admission.schema.json", string(raw))
	if err != nil {
		panic(fmt.Sprintf("compile admission schema: %v", err))
	}
	return sch
}

// ValidateExtraction checks a model output document against the admission
// schema. Returns a descriptive error listing the failing locations.
func ValidateExtraction(doc []byte) error {
	var v any
	if err := json.Unmarshal(doc, &v); err != nil {
		return fmt.Errorf("extraction is not valid JSON: %w", err)
	}
	if err := compiledSchema.Validate(v); err != nil {
		var ve *jsonschema.ValidationError
		if ok := asValidationError(err, &ve); ok {
			return fmt.Errorf("extraction schema: %s", flattenValidationError(ve))
		}
		return fmt.Errorf("extraction schema: %w", err)
	}
	return nil
}

func asValidationError(err error, target **jsonschema.ValidationError) bool {
	ve, ok := err.(*jsonschema.ValidationError)
	if ok {
		*target = ve
	}
	return ok
}

func flattenValidationError(ve *jsonschema.ValidationError) string {
	leaves := collectLeaves(ve)
	if len(leaves) == 0 {
		return ve.Message
	}
	var parts []string
	for _, l := range leaves {
		loc := l.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", loc, l.Message))
	}
	return strings.Join(parts, "; ")
}

func collectLeaves(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var out []*jsonschema.ValidationError
	for _, c := range ve.Causes {
		out = append(out, collectLeaves(c)...)
	}
	return out
}

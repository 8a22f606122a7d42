package extract

import (
	"encoding/json"
	"strings"
)

// BuildPrompt assembles the extraction instruction for one merged admission
// record. The schema rides along so the model targets the exact shape the
// validator will enforce.
func BuildPrompt(markdown string) string {
	schema, _ := json.MarshalIndent(BuildAdmissionJSONSchema(), "", "  ")

	var sb strings.Builder
	sb.WriteString(`You are a medical data extraction assistant specialized in Portuguese burn-unit admission records (Unidade de Queimados).

Extract the structured admission data from the record below into a single JSON document.

Rules:
- Dates MUST be in YYYY-MM-DD format; omit a date you cannot determine.
- numero_processo and numero_internamento are integers.
- sexo is "M" or "F".
- One queimaduras entry per distinct anatomical region; do not group hand with upper limb or foot with lower limb.
- Burn degree mapping: "1º grau" -> PRIMEIRO, "2º grau superficial" -> SEGUNDO_SUPERFICIAL, "2º grau profundo" or unspecified "2º grau" -> SEGUNDO_PROFUNDO, "3º grau" -> TERCEIRO, "4º grau" -> QUARTO.
- destino_alta and origem_entrada are free-text location descriptions (e.g. "Consulta Externa", "Domicílio").
- Return ONLY the JSON document, no commentary.

JSON Schema:
`)
	sb.Write(schema)
	sb.WriteString("\n\nMedical record:\n\n")
	sb.WriteString(markdown)
	return sb.String()
}

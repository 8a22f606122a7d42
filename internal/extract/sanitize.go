package extract

import (
	"encoding/json"
	"strings"
)

var optionalAdmissionDates = []string{"data_alta", "data_queimadura"}

// SanitizeOptionalFields normalizes or drops OPTIONAL values that would fail
// the stricter schema, so an otherwise sound extraction still validates. The
// required fields are never touched; if those are wrong the document should
// fail validation.
func SanitizeOptionalFields(doc []byte) ([]byte, []string, error) {
	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, nil, err
	}

	var dropped []string

	if adm, ok := m["internamento"].(map[string]any); ok {
		for _, k := range optionalAdmissionDates {
			if cleanOptionalDate(adm, k) {
				dropped = append(dropped, "internamento."+k)
			}
		}
		// sexo-style uppercase enums sometimes come back lowercased
		for _, k := range []string{"lesao_inalatoria", "tipo_acidente", "mecanismo_queimadura", "agente_queimadura"} {
			if v, ok := adm[k].(string); ok {
				adm[k] = strings.ToUpper(strings.TrimSpace(v))
			}
		}
	}

	if pat, ok := m["doente"].(map[string]any); ok {
		if v, ok := pat["sexo"].(string); ok {
			pat["sexo"] = strings.ToUpper(strings.TrimSpace(v))
		}
	}

	if burns, ok := m["queimaduras"].([]any); ok {
		for _, b := range burns {
			bm, ok := b.(map[string]any)
			if !ok {
				continue
			}
			for _, k := range []string{"local_anatomico", "grau_maximo"} {
				if v, ok := bm[k].(string); ok {
					bm[k] = strings.ToUpper(strings.TrimSpace(v))
				}
			}
			if cleanOptionalDate(bm, "data") {
				dropped = append(dropped, "queimaduras.data")
			}
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, nil, err
	}
	return out, dropped, nil
}

// cleanOptionalDate removes k when its value is empty, "null", or not a
// YYYY-MM-DD string. Reports whether the key was dropped.
func cleanOptionalDate(m map[string]any, k string) bool {
	v, present := m[k]
	if !present {
		return false
	}
	switch t := v.(type) {
	case nil:
		delete(m, k)
		return true
	case string:
		s := strings.TrimSpace(t)
		if s == "" || strings.EqualFold(s, "null") || !isCanonicalDate(s) {
			delete(m, k)
			return true
		}
		m[k] = s
		return false
	default:
		delete(m, k)
		return true
	}
}

func isCanonicalDate(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for i, r := range s {
		if i == 4 || i == 7 {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

package reconcile

import (
	"fmt"

	"github.com/uqregistry/admissions-tracker/internal/dataset"
	"github.com/uqregistry/admissions-tracker/internal/entity"
)

// Kind classifies how a field's values are normalized and stored.
type Kind int

const (
	KindText Kind = iota
	KindDate
	KindNumber
)

// FieldDescriptor binds one comparable field to its registry column, its
// storage path and its value kind. The comparable field set is this table and
// nothing else; adding a field is a single entry here.
type FieldDescriptor struct {
	Name      string
	CSVColumn string
	// MongoPath is the dotted document path targeted by registry updates.
	MongoPath string
	Kind      Kind
	// RecordValue extracts the stored value; a record missing nested
	// structure yields nil, never panics.
	RecordValue func(*entity.AdmissionRecord) any
	// RowValue extracts the raw registry value.
	RowValue func(dataset.Row) string
}

// Fields is the fixed comparable field set, in presentation order.
var Fields = []FieldDescriptor{
	{
		Name:      "ano_internamento",
		CSVColumn: dataset.ColYear,
		MongoPath: "ano_internamento",
		Kind:      KindNumber,
		RecordValue: func(r *entity.AdmissionRecord) any {
			if r.Year != nil {
				return *r.Year
			}
			return yearFromAdmissionNumber(r.AdmissionNumber())
		},
		RowValue: func(row dataset.Row) string { return row.Year },
	},
	{
		Name:      "numero_processo",
		CSVColumn: dataset.ColProcessNumber,
		MongoPath: "doente.numero_processo",
		Kind:      KindNumber,
		RecordValue: func(r *entity.AdmissionRecord) any {
			if r.Patient == nil {
				return nil
			}
			return r.Patient.ProcessNumber
		},
		RowValue: func(row dataset.Row) string { return row.ProcessNumber },
	},
	{
		Name:      "nome",
		CSVColumn: dataset.ColName,
		MongoPath: "doente.nome",
		Kind:      KindText,
		RecordValue: func(r *entity.AdmissionRecord) any {
			if r.Patient == nil {
				return nil
			}
			return r.Patient.Name
		},
		RowValue: func(row dataset.Row) string { return row.Name },
	},
	{
		Name:      "data_entrada",
		CSVColumn: dataset.ColAdmissionDate,
		MongoPath: "internamento.data_entrada",
		Kind:      KindDate,
		RecordValue: func(r *entity.AdmissionRecord) any {
			if r.Admission == nil {
				return nil
			}
			return r.Admission.AdmissionDate
		},
		RowValue: func(row dataset.Row) string { return row.AdmissionDate },
	},
	{
		Name:      "data_alta",
		CSVColumn: dataset.ColDischargeDate,
		MongoPath: "internamento.data_alta",
		Kind:      KindDate,
		RecordValue: func(r *entity.AdmissionRecord) any {
			if r.Admission == nil {
				return nil
			}
			return r.Admission.DischargeDate
		},
		RowValue: func(row dataset.Row) string { return row.DischargeDate },
	},
	{
		Name:      "destino_alta",
		CSVColumn: dataset.ColDestination,
		MongoPath: "internamento.destino_alta",
		Kind:      KindText,
		RecordValue: func(r *entity.AdmissionRecord) any {
			if r.Admission == nil {
				return nil
			}
			return r.Admission.Destination
		},
		RowValue: func(row dataset.Row) string { return row.Destination },
	},
	{
		Name:      "data_nascimento",
		CSVColumn: dataset.ColBirthDate,
		MongoPath: "doente.data_nascimento",
		Kind:      KindDate,
		RecordValue: func(r *entity.AdmissionRecord) any {
			if r.Patient == nil {
				return nil
			}
			return r.Patient.BirthDate
		},
		RowValue: func(row dataset.Row) string { return row.BirthDate },
	},
	{
		Name:      "data_queimadura",
		CSVColumn: dataset.ColBurnDate,
		MongoPath: "queimaduras.0.data",
		Kind:      KindDate,
		RecordValue: func(r *entity.AdmissionRecord) any {
			return r.FirstBurnDate()
		},
		RowValue: func(row dataset.Row) string { return row.BurnDate },
	},
}

// yearFromAdmissionNumber recovers the admission year from the admission
// number, whose first two digits are the two-digit year (e.g. 2305 -> 2023).
// Returns nil when the number is too short to carry a year.
func yearFromAdmissionNumber(n int64) any {
	s := fmt.Sprintf("%d", n)
	if len(s) < 4 {
		return nil
	}
	var yy int64
	if _, err := fmt.Sscanf(s[:2], "%d", &yy); err != nil {
		return nil
	}
	return 2000 + yy
}

// FieldByName looks up a descriptor in the fixed table.
func FieldByName(name string) (FieldDescriptor, bool) {
	for _, f := range Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// CheckFields verifies the descriptor table is well-formed: unique names and
// paths, every extractor present. Called once at startup.
func CheckFields() error {
	names := make(map[string]struct{}, len(Fields))
	paths := make(map[string]struct{}, len(Fields))
	for _, f := range Fields {
		if f.Name == "" || f.CSVColumn == "" || f.MongoPath == "" {
			return fmt.Errorf("field descriptor %q is incomplete", f.Name)
		}
		if f.RecordValue == nil || f.RowValue == nil {
			return fmt.Errorf("field descriptor %q is missing an extractor", f.Name)
		}
		if _, dup := names[f.Name]; dup {
			return fmt.Errorf("duplicate field name %q", f.Name)
		}
		if _, dup := paths[f.MongoPath]; dup {
			return fmt.Errorf("duplicate storage path %q", f.MongoPath)
		}
		names[f.Name] = struct{}{}
		paths[f.MongoPath] = struct{}{}
	}
	return nil
}

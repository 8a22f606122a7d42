// Package entity defines the admission document model persisted in the
// internamentos collection. One document represents one hospital stay; the
// patient and all clinical sub-records are embedded.
package entity

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Patient is the embedded doente subdocument.
type Patient struct {
	Name          string   `bson:"nome,omitempty" json:"nome"`
	ProcessNumber *int64   `bson:"numero_processo,omitempty" json:"numero_processo"`
	BirthDate     FlexDate `bson:"data_nascimento,omitempty" json:"data_nascimento"`
	Sex           string   `bson:"sexo,omitempty" json:"sexo"`
	Address       string   `bson:"morada,omitempty" json:"morada"`
	Pathologies   []bson.M `bson:"patologias,omitempty" json:"patologias,omitempty"`
	Medications   []bson.M `bson:"medicacoes,omitempty" json:"medicacoes,omitempty"`
}

// Admission is the embedded internamento subdocument.
type Admission struct {
	AdmissionNumber  int64    `bson:"numero_internamento" json:"numero_internamento"`
	AdmissionDate    FlexDate `bson:"data_entrada,omitempty" json:"data_entrada"`
	DischargeDate    FlexDate `bson:"data_alta,omitempty" json:"data_alta"`
	BurnDate         FlexDate `bson:"data_queimadura,omitempty" json:"data_queimadura"`
	Origin           string   `bson:"origem_entrada,omitempty" json:"origem_entrada"`
	Destination      string   `bson:"destino_alta,omitempty" json:"destino_alta"`
	TBSATotal        *float64 `bson:"ASCQ_total,omitempty" json:"ASCQ_total"`
	InhalationInjury string   `bson:"lesao_inalatoria,omitempty" json:"lesao_inalatoria"`
	Mechanism        string   `bson:"mecanismo_queimadura,omitempty" json:"mecanismo_queimadura"`
	Agent            string   `bson:"agente_queimadura,omitempty" json:"agente_queimadura"`
	AccidentType     string   `bson:"tipo_acidente,omitempty" json:"tipo_acidente"`
}

// Burn is one entry of the queimaduras array, one per anatomical region.
type Burn struct {
	Location   string   `bson:"local_anatomico,omitempty" json:"local_anatomico"`
	Degree     string   `bson:"grau_maximo,omitempty" json:"grau_maximo"`
	Percentage *float64 `bson:"percentagem,omitempty" json:"percentagem"`
	Date       FlexDate `bson:"data,omitempty" json:"data"`
	Note       string   `bson:"nota,omitempty" json:"nota"`
}

// AdmissionRecord is the top-level internamentos document.
type AdmissionRecord struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Year           *int64             `bson:"ano_internamento,omitempty"`
	Patient        *Patient           `bson:"doente,omitempty"`
	Admission      *Admission         `bson:"internamento,omitempty"`
	Burns          []Burn             `bson:"queimaduras,omitempty"`
	Procedures     []bson.M           `bson:"procedimentos,omitempty"`
	Antibiotics    []bson.M           `bson:"antibioticos,omitempty"`
	Infections     []bson.M           `bson:"infecoes,omitempty"`
	Traumas        []bson.M           `bson:"traumas,omitempty"`
	SourceFile     string             `bson:"source_file,omitempty"`
	ExtractionDate string             `bson:"extraction_date,omitempty"`
	ImportDate     string             `bson:"import_date,omitempty"`
	UpdatedAt      string             `bson:"updated_at,omitempty"`
	UpdatedFromCSV bool               `bson:"updated_from_csv,omitempty"`
}

// AdmissionNumber returns the join key, or 0 when the nested admission
// structure is missing.
func (r *AdmissionRecord) AdmissionNumber() int64 {
	if r == nil || r.Admission == nil {
		return 0
	}
	return r.Admission.AdmissionNumber
}

// FirstBurnDate returns the date of the first burn entry, if any.
func (r *AdmissionRecord) FirstBurnDate() FlexDate {
	if r == nil || len(r.Burns) == 0 {
		return FlexDate{}
	}
	return r.Burns[0].Date
}

package repository

import (
	"context"
	"errors"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/uqregistry/admissions-tracker/internal/common"
	"github.com/uqregistry/admissions-tracker/internal/entity"
)

// keyPath is the dotted path of the unique join key inside a document.
const keyPath = "internamento.numero_internamento"

type AdmissionRepository interface {
	FindAll(ctx context.Context) ([]*entity.AdmissionRecord, error)
	GetByAdmissionNumber(ctx context.Context, admissionNumber int64) (*entity.AdmissionRecord, error)
	Exists(ctx context.Context, admissionNumber int64) (bool, error)
	Count(ctx context.Context) (int64, error)
	Insert(ctx context.Context, doc bson.M) (string, error)
	ApplyFieldUpdate(ctx context.Context, admissionNumber int64, fields bson.M) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type admissionRepository struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

func NewAdmissionRepository(client *mongo.Client, database, collection string, logger *slog.Logger) AdmissionRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &admissionRepository{
		coll:   client.Database(database).Collection(collection),
		logger: logger,
	}
}

func (r *admissionRepository) FindAll(ctx context.Context) ([]*entity.AdmissionRecord, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: keyPath, Value: 1}}))
	if err != nil {
		r.logger.Error("failed to list admissions", "error", err)
		return nil, common.WrapError(err, "list admissions")
	}
	defer cur.Close(ctx)

	var records []*entity.AdmissionRecord
	for cur.Next(ctx) {
		var rec entity.AdmissionRecord
		if err := cur.Decode(&rec); err != nil {
			r.logger.Error("failed to decode admission", "error", err)
			return nil, common.WrapError(err, "decode admission")
		}
		records = append(records, &rec)
	}
	if err := cur.Err(); err != nil {
		return nil, common.WrapError(err, "iterate admissions")
	}
	return records, nil
}

func (r *admissionRepository) GetByAdmissionNumber(ctx context.Context, admissionNumber int64) (*entity.AdmissionRecord, error) {
	var rec entity.AdmissionRecord
	err := r.coll.FindOne(ctx, bson.M{keyPath: admissionNumber}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.WrapError(err, "get admission")
	}
	return &rec, nil
}

func (r *admissionRepository) Exists(ctx context.Context, admissionNumber int64) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{keyPath: admissionNumber}, options.Count().SetLimit(1))
	if err != nil {
		return false, common.WrapError(err, "check admission exists")
	}
	return n > 0, nil
}

func (r *admissionRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, common.WrapError(err, "count admissions")
	}
	return n, nil
}

func (r *admissionRepository) Insert(ctx context.Context, doc bson.M) (string, error) {
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", common.WrapError(err, "insert admission")
	}
	if oid, ok := res.InsertedID.(interface{ Hex() string }); ok {
		return oid.Hex(), nil
	}
	return "", nil
}

// ApplyFieldUpdate sets the given fields on one record in a single update
// operation. The record is matched by admission number only; there is no
// optimistic token, the session is assumed to be the sole writer.
func (r *admissionRepository) ApplyFieldUpdate(ctx context.Context, admissionNumber int64, fields bson.M) (int64, error) {
	res, err := r.coll.UpdateOne(ctx, bson.M{keyPath: admissionNumber}, bson.M{"$set": fields})
	if err != nil {
		r.logger.Error("failed to update admission", "admission", admissionNumber, "error", err)
		return 0, common.WrapError(err, "update admission")
	}
	return res.ModifiedCount, nil
}

func (r *admissionRepository) EnsureIndexes(ctx context.Context) error {
	unique := true
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: keyPath, Value: 1}},
			Options: &options.IndexOptions{Unique: &unique, Name: strPtr("idx_numero_internamento")},
		},
		{
			Keys:    bson.D{{Key: "doente.numero_processo", Value: 1}},
			Options: &options.IndexOptions{Name: strPtr("idx_patient_processo")},
		},
		{
			Keys:    bson.D{{Key: "internamento.data_entrada", Value: -1}},
			Options: &options.IndexOptions{Name: strPtr("idx_data_entrada")},
		},
		{
			Keys:    bson.D{{Key: "doente.nome", Value: 1}},
			Options: &options.IndexOptions{Name: strPtr("idx_patient_name")},
		},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, models); err != nil {
		return common.WrapError(err, "create indexes")
	}
	r.logger.Info("admission indexes ensured", "count", len(models))
	return nil
}

func strPtr(s string) *string { return &s }

package update

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/uqregistry/admissions-tracker/internal/console"
	"github.com/uqregistry/admissions-tracker/internal/reconcile"
)

// Store is the narrow storage surface the commit phase needs.
type Store interface {
	// ApplyFieldUpdate applies a single $set of fields to the record with
	// the given admission number and returns the modified count.
	ApplyFieldUpdate(ctx context.Context, admissionNumber int64, fields bson.M) (int64, error)
}

// Failure records one record-level commit error.
type Failure struct {
	AdmissionNumber int64
	Reason          string
}

// CommitStats summarizes a commit pass. Every run ends with these counts;
// there is no silent partial success.
type CommitStats struct {
	Total    int
	Updated  int
	Failed   int
	Failures []Failure
}

// BuildPayload converts one selection into its update document: each chosen
// field's storage path mapped to the registry value coerced to its storage
// type, plus the audit fields. Registry values that fail coercion are left
// out rather than written as nulls.
func BuildPayload(sel Selection, now time.Time) bson.M {
	payload := bson.M{}

	for _, f := range sel.Fields {
		fd, ok := reconcile.FieldByName(f.Field)
		if !ok {
			continue
		}
		switch fd.Kind {
		case reconcile.KindDate:
			norm := reconcile.NormalizeDate(f.CSVRaw)
			if norm == "" {
				continue
			}
			t, err := time.ParseInLocation("2006-01-02", norm, time.UTC)
			if err != nil {
				continue
			}
			payload[fd.MongoPath] = t
		case reconcile.KindNumber:
			n := reconcile.ToInt(f.CSVRaw)
			if n == nil {
				continue
			}
			payload[fd.MongoPath] = *n
		default:
			payload[fd.MongoPath] = f.CSVRaw
		}
	}

	payload["updated_at"] = now.UTC().Format(time.RFC3339)
	payload["updated_from_csv"] = true
	return payload
}

// Commit applies the selections, one update operation per record. A failing
// write is recorded and does not stop the batch. Selections whose payload
// carries only audit fields are skipped.
func Commit(ctx context.Context, store Store, selections []Selection, op console.Operator, logger *slog.Logger) CommitStats {
	if logger == nil {
		logger = slog.Default()
	}
	stats := CommitStats{Total: len(selections)}

	for i, sel := range selections {
		payload := BuildPayload(sel, time.Now())
		if len(payload) <= 2 { // only updated_at + updated_from_csv
			stats.Failed++
			stats.Failures = append(stats.Failures, Failure{
				AdmissionNumber: sel.AdmissionNumber,
				Reason:          "no convertible registry values",
			})
			continue
		}

		if op != nil {
			op.Printf("updating %d/%d: admission %d (%d field(s))\n",
				i+1, len(selections), sel.AdmissionNumber, len(sel.Fields))
		}

		modified, err := store.ApplyFieldUpdate(ctx, sel.AdmissionNumber, payload)
		if err != nil {
			stats.Failed++
			stats.Failures = append(stats.Failures, Failure{
				AdmissionNumber: sel.AdmissionNumber,
				Reason:          err.Error(),
			})
			logger.Error("update.commit.failed", "admission", sel.AdmissionNumber, "error", err)
			continue
		}
		if modified == 0 {
			stats.Failed++
			stats.Failures = append(stats.Failures, Failure{
				AdmissionNumber: sel.AdmissionNumber,
				Reason:          "record not modified",
			})
			logger.Warn("update.commit.unmodified", "admission", sel.AdmissionNumber)
			continue
		}
		stats.Updated++
	}

	logger.Info("update.commit.ok",
		"total", stats.Total,
		"updated", stats.Updated,
		"failed", stats.Failed,
	)
	return stats
}

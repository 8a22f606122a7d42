package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

// FlexDate has to decode both representations that coexist in the collection:
// strings written at import time and datetimes written by registry updates.
func TestFlexDateDecodesBothRepresentations(t *testing.T) {
	ts := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)
	raw, err := bson.Marshal(bson.M{
		"asString": "2023-02-01",
		"asTime":   ts,
		"asNull":   nil,
	})
	require.NoError(t, err)

	var doc struct {
		AsString FlexDate `bson:"asString"`
		AsTime   FlexDate `bson:"asTime"`
		AsNull   FlexDate `bson:"asNull"`
	}
	require.NoError(t, bson.Unmarshal(raw, &doc))

	assert.Equal(t, "2023-02-01", doc.AsString.Value())
	assert.Equal(t, ts, doc.AsTime.Value())
	assert.True(t, doc.AsNull.IsZero())
	assert.Nil(t, doc.AsNull.Value())
}

func TestFlexDateZero(t *testing.T) {
	assert.True(t, FlexDate{}.IsZero())
	assert.False(t, NewFlexDateString("2023-02-01").IsZero())
	assert.False(t, NewFlexDateTime(time.Now()).IsZero())
}

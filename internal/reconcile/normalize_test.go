package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/uqregistry/admissions-tracker/internal/entity"
)

func TestNormalizeDateLayouts(t *testing.T) {
	for _, in := range []string{"2023-12-31", "31-12-2023", "31/12/2023", "2023/12/31"} {
		assert.Equal(t, "2023-12-31", NormalizeDate(in), "input %q", in)
	}
}

func TestNormalizeDateEmptyAndInvalid(t *testing.T) {
	assert.Equal(t, "", NormalizeDate(nil))
	assert.Equal(t, "", NormalizeDate(""))
	assert.Equal(t, "", NormalizeDate("   "))
	assert.Equal(t, "", NormalizeDate("not a date"))
	assert.Equal(t, "", NormalizeDate("31-31-2023"))
	assert.Equal(t, "", NormalizeDate(42))
}

func TestNormalizeDateIdempotent(t *testing.T) {
	once := NormalizeDate("31/12/2023")
	assert.Equal(t, once, NormalizeDate(once))
}

func TestNormalizeDateTimeValues(t *testing.T) {
	ts := time.Date(2023, 12, 31, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "2023-12-31", NormalizeDate(ts))
	assert.Equal(t, "2023-12-31", NormalizeDate(&ts))
	assert.Equal(t, "", NormalizeDate((*time.Time)(nil)))
	assert.Equal(t, "", NormalizeDate(time.Time{}))
}

func TestNormalizeDateFlexDate(t *testing.T) {
	assert.Equal(t, "2021-05-09", NormalizeDate(entity.NewFlexDateString("09/05/2021")))
	assert.Equal(t, "2021-05-09", NormalizeDate(entity.NewFlexDateTime(time.Date(2021, 5, 9, 0, 0, 0, 0, time.UTC))))
	assert.Equal(t, "", NormalizeDate(entity.FlexDate{}))
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "maria", NormalizeText(" Maria "))
	assert.Equal(t, "maria", NormalizeText("MARIA"))
	assert.Equal(t, "maria  silva", NormalizeText("Maria  Silva"), "internal spacing is preserved")
	assert.Equal(t, "", NormalizeText(nil))
	assert.Equal(t, "", NormalizeText(42))
}

func TestToInt(t *testing.T) {
	n := int64(123)

	assert.Nil(t, ToInt(nil))
	assert.Nil(t, ToInt(""))
	assert.Nil(t, ToInt("abc"))
	assert.Nil(t, ToInt((*int64)(nil)))

	assert.Equal(t, int64(123), *ToInt("123"))
	assert.Equal(t, int64(123), *ToInt(" 123 "))
	assert.Equal(t, int64(123), *ToInt(123))
	assert.Equal(t, int64(123), *ToInt(int64(123)))
	assert.Equal(t, int64(123), *ToInt(&n))
	assert.Equal(t, int64(123), *ToInt(float64(123)))
}

package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStringsEnumeratesInclusiveAscending(t *testing.T) {
	r, err := ParseRange("2016-08-17", "2016-08-20")
	assert.NoError(t, err)

	assert.Equal(t, []string{"2016-08-17", "2016-08-18", "2016-08-19", "2016-08-20"}, r.Strings())
	assert.Equal(t, 4, r.Days())
}

func TestSingleDayRange(t *testing.T) {
	r, err := ParseRange("2016-08-17", "2016-08-17")
	assert.NoError(t, err)

	assert.Equal(t, []string{"2016-08-17"}, r.Strings())
	assert.Equal(t, 1, r.Days())
}

func TestCrossesMonthBoundary(t *testing.T) {
	r, err := ParseRange("2016-08-30", "2016-09-02")
	assert.NoError(t, err)

	assert.Equal(t, []string{"2016-08-30", "2016-08-31", "2016-09-01", "2016-09-02"}, r.Strings())
}

func TestLeapDay(t *testing.T) {
	r, err := ParseRange("2016-02-28", "2016-03-01")
	assert.NoError(t, err)

	assert.Equal(t, []string{"2016-02-28", "2016-02-29", "2016-03-01"}, r.Strings())
}

func TestStartAfterEndRejected(t *testing.T) {
	_, err := ParseRange("2016-08-20", "2016-08-17")
	assert.Error(t, err)
}

func TestParseRejectsMalformedDate(t *testing.T) {
	_, err := Parse("2016-8-17")
	assert.Error(t, err)

	_, err = Parse("17.08.2016")
	assert.Error(t, err)
}

func TestNewDiscardsTimeOfDay(t *testing.T) {
	loc := time.FixedZone("MSK", 3*60*60)
	start := time.Date(2016, 8, 17, 23, 59, 0, 0, loc)
	end := time.Date(2016, 8, 18, 0, 1, 0, 0, loc)

	r, err := New(start, end)
	assert.NoError(t, err)
	assert.Equal(t, []string{"2016-08-17", "2016-08-18"}, r.Strings())
}

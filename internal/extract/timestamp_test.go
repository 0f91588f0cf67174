package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTimestampSecondsAndMillisAgree(t *testing.T) {
	sec := normalizeTimestamp(float64(1700000000))
	ms := normalizeTimestamp(float64(1700000000000))
	require.NotEmpty(t, sec)
	assert.Equal(t, sec, ms)
	assert.Equal(t, time.Unix(1700000000, 0).Format(canonicalLayout), sec)
}

func TestNormalizeTimestampDigitString(t *testing.T) {
	assert.Equal(t,
		normalizeTimestamp(float64(1700000000)),
		normalizeTimestamp("1700000000"))
	assert.Equal(t,
		normalizeTimestamp(float64(1700000000)),
		normalizeTimestamp("1700000000000"))
}

func TestNormalizeTimestampStringPassthrough(t *testing.T) {
	assert.Equal(t, "2024-05-01T10:00:00Z", normalizeTimestamp("2024-05-01T10:00:00Z"))
	assert.Equal(t, "yesterday", normalizeTimestamp("yesterday"))
	// 17 digits no longer look like an epoch.
	assert.Equal(t, "17000000000000000", normalizeTimestamp("17000000000000000"))
}

func TestNormalizeTimestampInvalid(t *testing.T) {
	assert.Empty(t, normalizeTimestamp(nil))
	assert.Empty(t, normalizeTimestamp("   "))
	assert.Empty(t, normalizeTimestamp([]any{"x"}))
	assert.Empty(t, normalizeTimestamp(float64(9e15)))
}

func TestNormalizeTimestampLargeNegative(t *testing.T) {
	// A large negative value is not a millisecond epoch; it is out of range
	// as seconds and comes out empty.
	assert.Empty(t, normalizeTimestamp(float64(-2e12)))
	assert.Empty(t, normalizeTimestamp(float64(-1.5e12)))
}

func TestRecordTimestampKeyOrder(t *testing.T) {
	obj := rec(t, `{"timestamp": 1700000000, "time": 1600000000}`)
	assert.Equal(t, normalizeTimestamp(float64(1700000000)), recordTimestamp(obj))

	// An unconvertible first key falls through to the next one.
	obj = rec(t, `{"timestamp": {}, "createdAt": "2024-05-01T10:00:00Z"}`)
	assert.Equal(t, "2024-05-01T10:00:00Z", recordTimestamp(obj))
}

func TestRecordTimestampAbsent(t *testing.T) {
	assert.Empty(t, recordTimestamp(rec(t, `{"other": "x"}`)))
}

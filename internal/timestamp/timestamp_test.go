package timestamp

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_PreservesOffsetAndWallClock(t *testing.T) {
	ts, err := Parse("2025-07-19T13:30:00.123+09:00")
	require.NoError(t, err)

	assert.Equal(t, 2025, ts.Year())
	assert.Equal(t, time.July, ts.Month())
	assert.Equal(t, 19, ts.Day())
	assert.Equal(t, 13, ts.Hour())
	assert.Equal(t, 30, ts.Minute())
	assert.Equal(t, 0, ts.Second())
	assert.Equal(t, 123, ts.Millis())
	assert.Equal(t, 540, ts.OffsetMinutes())
	assert.Equal(t, "+0900", ts.OffsetString())
	assert.Equal(t, "2025-07-19T13:30:00.123+09:00", ts.String())
}

func TestParse_Offsets(t *testing.T) {
	tests := []struct {
		in      string
		minutes int
		offset  string
		out     string
	}{
		{"2025-07-19T13:30:00Z", 0, "+0000", "2025-07-19T13:30:00Z"},
		{"2025-07-19T13:30:00+00:00", 0, "+0000", "2025-07-19T13:30:00Z"},
		{"2025-07-19T13:30:00-05:00", -300, "-0500", "2025-07-19T13:30:00-05:00"},
		{"2025-07-19T13:30:00-03:30", -210, "-0330", "2025-07-19T13:30:00-03:30"},
		{"2025-07-19T13:30:00+0545", 345, "+0545", "2025-07-19T13:30:00+05:45"},
		{"2025-07-19T13:30:00+14", 840, "+1400", "2025-07-19T13:30:00+14:00"},
		{"2025-07-19 13:30:00+09:00", 540, "+0900", "2025-07-19T13:30:00+09:00"},
		{"2025-07-19T13:30+09:00", 540, "+0900", "2025-07-19T13:30:00+09:00"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			ts, err := Parse(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.minutes, ts.OffsetMinutes())
			assert.Equal(t, tc.offset, ts.OffsetString())
			assert.Equal(t, tc.out, ts.String())
		})
	}
}

func TestParse_FractionDigits(t *testing.T) {
	fractions := map[string]int{
		".1":         100,
		".12":        120,
		".123":       123,
		".1234":      123,
		".12345":     123,
		".123456":    123,
		".1234567":   123,
		".12345678":  123,
		".123456789": 123,
	}
	for frac, millis := range fractions {
		t.Run(frac, func(t *testing.T) {
			ts, err := Parse("2025-07-19T23:59:59" + frac + "+09:00")
			require.NoError(t, err)
			assert.Equal(t, millis, ts.Millis())
			// the fraction never touches the wall clock or the offset
			assert.Equal(t, 23, ts.Hour())
			assert.Equal(t, 59, ts.Minute())
			assert.Equal(t, 59, ts.Second())
			assert.Equal(t, 19, ts.Day())
			assert.Equal(t, 540, ts.OffsetMinutes())
		})
	}
}

func TestParse_NoDateRollback(t *testing.T) {
	// 01:15 at +09:00 is the previous day in UTC; the local date must win.
	ts, err := Parse("2025-07-19T01:15:00+09:00")
	require.NoError(t, err)
	assert.Equal(t, 19, ts.Day())
	assert.Equal(t, 1, ts.Hour())
	assert.Equal(t, 18, ts.Time().UTC().Day())
}

func TestParse_RoundTrip(t *testing.T) {
	inputs := []string{
		"2025-07-19T13:30:00.123+09:00",
		"2025-01-01T00:00:00-08:00",
		"2024-02-29T23:45:12.5+05:30",
		"2025-12-31T23:59:59.999999999Z",
	}
	for _, in := range inputs {
		first, err := Parse(in)
		require.NoError(t, err)
		second, err := Parse(first.String())
		require.NoError(t, err)
		assert.True(t, first.Equal(second), "%s -> %s", in, first.String())
		assert.Equal(t, first.OffsetMinutes(), second.OffsetMinutes())
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		is    error
		cause string
	}{
		{"empty", "", nil, "empty"},
		{"no offset", "2025-07-19T13:30:00.123", ErrMissingOffset, ""},
		{"date only", "2025-07-19", nil, ""},
		{"garbage", "yesterday at noon", nil, ""},
		{"bad month", "2025-13-19T13:30:00+09:00", nil, "month out of range"},
		{"bad day", "2025-02-30T13:30:00+09:00", nil, "day out of range"},
		{"bad day without seconds", "2025-02-30T13:30+09:00", nil, "day out of range"},
		{"bad hour", "2025-07-19T25:30:00+09:00", nil, "hour out of range"},
		{"trailing text", "2025-07-19T13:30:00+09:00 extra", nil, "extra text"},
		{"offset +24:00", "2025-07-19T13:30:00+24:00", ErrOffsetOutOfRange, ""},
		{"offset -24:00", "2025-07-19T13:30:00-24:00", ErrOffsetOutOfRange, ""},
		{"offset +24", "2025-07-19T13:30:00+24", ErrOffsetOutOfRange, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.in)
			require.Error(t, err)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, tc.in, parseErr.Input)
			assert.NotNil(t, parseErr.Err)
			if tc.is != nil {
				assert.ErrorIs(t, err, tc.is)
			}
			if tc.cause != "" {
				assert.Contains(t, err.Error(), tc.cause)
			}
		})
	}
}

func TestParse_OffsetBounds(t *testing.T) {
	ts, err := Parse("2025-07-19T13:30:00+23:59")
	require.NoError(t, err)
	assert.Equal(t, 23*60+59, ts.OffsetMinutes())

	ts, err = Parse("2025-07-19T13:30:00-23:59")
	require.NoError(t, err)
	assert.Equal(t, -(23*60 + 59), ts.OffsetMinutes())
}

func TestFromTime_KeepsZone(t *testing.T) {
	zone := time.FixedZone("JST", 9*60*60)
	ts := FromTime(time.Date(2025, 7, 19, 13, 30, 0, 0, zone))
	assert.Equal(t, 540, ts.OffsetMinutes())
	assert.Equal(t, "2025-07-19T13:30:00+09:00", ts.String())
}

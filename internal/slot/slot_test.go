package slot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/watchme-vault/internal/timestamp"
)

func TestLabel(t *testing.T) {
	tests := []struct {
		hour, minute int
		want         string
	}{
		{13, 0, "13-00"},
		{13, 29, "13-00"},
		{13, 30, "13-30"},
		{13, 59, "13-30"},
		{0, 0, "00-00"},
		{23, 45, "23-30"},
		{9, 5, "09-00"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Label(tc.hour, tc.minute), "%02d:%02d", tc.hour, tc.minute)
	}
}

func TestFor_UsesLocalWallClock(t *testing.T) {
	tests := []struct {
		in   string
		want Labels
	}{
		{"2025-07-19T13:30:00.123+09:00", Labels{Date: "2025-07-19", Slot: "13-30"}},
		{"2025-07-19T00:10:00+09:00", Labels{Date: "2025-07-19", Slot: "00-00"}},
		{"2025-07-19T23:59:59-10:00", Labels{Date: "2025-07-19", Slot: "23-30"}},
		{"2024-02-29T12:29:59.999Z", Labels{Date: "2024-02-29", Slot: "12-00"}},
	}
	for _, tc := range tests {
		ts, err := timestamp.Parse(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, For(ts), tc.in)
	}
}

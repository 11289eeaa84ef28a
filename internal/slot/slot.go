// Package slot buckets a device-local time of day into 30-minute slots.
package slot

import (
	"fmt"

	"github.com/dharsanguruparan/watchme-vault/internal/timestamp"
)

// Width is the slot size in minutes.
const Width = 30

// Labels are the date and slot path segments for one recording.
type Labels struct {
	Date string // YYYY-MM-DD, local
	Slot string // HH-00 or HH-30, local
}

// For derives labels from the wall clock of ts. The offset is never applied.
func For(ts timestamp.Timestamp) Labels {
	return Labels{
		Date: fmt.Sprintf("%04d-%02d-%02d", ts.Year(), int(ts.Month()), ts.Day()),
		Slot: Label(ts.Hour(), ts.Minute()),
	}
}

// Label returns the slot label for an hour and minute, e.g. 13:29 -> "13-00".
func Label(hour, minute int) string {
	return fmt.Sprintf("%02d-%02d", hour, minute/Width*Width)
}

// Package timestamp parses device-local ISO-8601 timestamps and keeps the UTC
// offset the device sent. Nothing in this package converts to UTC: the wall
// clock fields a device recorded are the fields callers read back.
package timestamp

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	// ErrMissingOffset is returned for timestamps without Z or a numeric offset.
	ErrMissingOffset = errors.New("timestamp has no UTC offset")
	// ErrNotString is used when a timestamp arrives as a non-string JSON value.
	ErrNotString = errors.New("timestamp must be a string")
	// ErrOffsetOutOfRange is returned for offsets of 24 hours or more.
	ErrOffsetOutOfRange = errors.New("utc offset must be strictly between -24:00 and +24:00")
	errEmpty            = errors.New("timestamp is empty")
)

// layouts are tried in order. time.Parse accepts a fractional second after the
// seconds field even though the layout does not spell it out, so 1-9 fraction
// digits are covered by every layout with seconds.
var layouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05Z07",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04Z0700",
	"2006-01-02T15:04Z07",
}

// ParseError reports a timestamp that could not be parsed together with the
// underlying cause.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Timestamp is a wall-clock time paired with the signed UTC offset it was
// recorded in. The embedded time is pinned to a fixed zone with exactly that
// offset, so Hour, Minute and friends return the device's local values.
type Timestamp struct {
	t             time.Time
	offsetMinutes int
}

// Parse reads an ISO-8601 date-time with an explicit offset (±HH:MM, ±HHMM,
// ±HH or Z). A single space is accepted in place of the T separator.
func Parse(s string) (Timestamp, error) {
	if s == "" {
		return Timestamp{}, &ParseError{Input: s, Err: errEmpty}
	}
	value := s
	if len(value) > 10 && value[10] == ' ' {
		value = value[:10] + "T" + value[11:]
	}
	if !hasOffset(value) {
		return Timestamp{}, &ParseError{Input: s, Err: ErrMissingOffset}
	}
	var cause error
	for _, layout := range layouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			ts := FromTime(t)
			if ts.offsetMinutes <= -24*60 || ts.offsetMinutes >= 24*60 {
				return Timestamp{}, &ParseError{Input: s, Err: ErrOffsetOutOfRange}
			}
			return ts, nil
		}
		if cause == nil || remaining(err) < remaining(cause) {
			cause = err
		}
	}
	return Timestamp{}, &ParseError{Input: s, Err: cause}
}

// remaining ranks a failed layout by how much input it left unparsed. Range
// and trailing-text errors mean the layout matched, so they rank first.
func remaining(err error) int {
	var pe *time.ParseError
	if !errors.As(err, &pe) {
		return math.MaxInt
	}
	if pe.Message != "" {
		return -1
	}
	return len(pe.ValueElem)
}

// hasOffset looks for a zone designator after the date part. The time of day
// never contains '+' or '-', so any of those past the T belongs to the offset.
func hasOffset(value string) bool {
	idx := strings.IndexByte(value, 'T')
	if idx < 0 {
		// Let time.Parse describe what is wrong with the date itself.
		return true
	}
	return strings.ContainsAny(value[idx+1:], "Z+-")
}

// FromTime wraps t, keeping whatever offset t currently carries.
func FromTime(t time.Time) Timestamp {
	_, offset := t.Zone()
	return Timestamp{
		t:             t.In(time.FixedZone(formatOffset(offset/60, true), offset)),
		offsetMinutes: offset / 60,
	}
}

// Time returns the timestamp as a time.Time in a fixed zone with the original
// offset. Formatting it never shifts the wall clock.
func (ts Timestamp) Time() time.Time { return ts.t }

// OffsetMinutes is the signed UTC offset in minutes, e.g. 540 for +09:00.
func (ts Timestamp) OffsetMinutes() int { return ts.offsetMinutes }

// Year is the device-local year.
func (ts Timestamp) Year() int { return ts.t.Year() }

// Month is the device-local month.
func (ts Timestamp) Month() time.Month { return ts.t.Month() }

// Day is the device-local day of the month.
func (ts Timestamp) Day() int { return ts.t.Day() }

// Hour is the device-local hour.
func (ts Timestamp) Hour() int { return ts.t.Hour() }

// Minute is the device-local minute.
func (ts Timestamp) Minute() int { return ts.t.Minute() }

// Second is the device-local second.
func (ts Timestamp) Second() int { return ts.t.Second() }

// Nanosecond is the sub-second fraction in nanoseconds.
func (ts Timestamp) Nanosecond() int { return ts.t.Nanosecond() }

// IsZero reports whether ts is the zero value.
func (ts Timestamp) IsZero() bool { return ts.t.IsZero() }

// Equal compares wall clock and offset, so the same instant at two offsets is
// not equal.
func (ts Timestamp) Equal(o Timestamp) bool { return ts.String() == o.String() }

// Millis is the sub-second fraction truncated to milliseconds.
func (ts Timestamp) Millis() int { return ts.t.Nanosecond() / int(time.Millisecond) }

// String renders RFC 3339 with nanosecond precision (trailing zeros trimmed)
// and the original offset. A zero offset renders as Z.
func (ts Timestamp) String() string { return ts.t.Format(time.RFC3339Nano) }

// OffsetString renders the offset as ±HHMM, e.g. +0900 or -0330.
func (ts Timestamp) OffsetString() string { return formatOffset(ts.offsetMinutes, false) }

func formatOffset(minutes int, colon bool) string {
	sign := '+'
	if minutes < 0 {
		sign = '-'
		minutes = -minutes
	}
	if colon {
		return fmt.Sprintf("%c%02d:%02d", sign, minutes/60, minutes%60)
	}
	return fmt.Sprintf("%c%02d%02d", sign, minutes/60, minutes%60)
}

// Package storagekey builds object-store keys for uploaded recordings and
// guards them against path traversal through the device id.
package storagekey

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dharsanguruparan/watchme-vault/internal/slot"
)

// Prefix is the first key segment and FileName the last.
const (
	Prefix   = "files"
	FileName = "audio.wav"
)

// ErrInvalidDeviceID matches every *ValidationError via errors.Is.
var ErrInvalidDeviceID = errors.New("invalid device_id")

// ValidationError describes why a device id cannot be used in a key.
type ValidationError struct {
	DeviceID string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid device_id %q: %s", e.DeviceID, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidDeviceID }

// Key is files/{device}/{date}/{slot}/audio.wav.
type Key struct {
	DeviceID string
	Date     string
	Slot     string
}

func (k Key) String() string {
	return strings.Join([]string{Prefix, k.DeviceID, k.Date, k.Slot, FileName}, "/")
}

// Build validates deviceID and composes the key. Unsafe ids are rejected, not
// rewritten.
func Build(deviceID string, labels slot.Labels) (Key, error) {
	if err := ValidateDeviceID(deviceID); err != nil {
		return Key{}, err
	}
	return Key{DeviceID: deviceID, Date: labels.Date, Slot: labels.Slot}, nil
}

// ValidateDeviceID reports whether id is a single safe path segment.
func ValidateDeviceID(id string) error {
	reason := ""
	switch {
	case id == "":
		reason = "must not be empty"
	case strings.Contains(id, ".."):
		reason = "must not contain '..'"
	case strings.HasPrefix(id, "/"), strings.HasPrefix(id, `\`):
		reason = "must not start with a path separator"
	case strings.ContainsRune(id, 0):
		reason = "must not contain a null byte"
	case strings.ContainsAny(id, `/\`):
		reason = "must not contain a path separator"
	case !utf8.ValidString(id):
		reason = "must be valid UTF-8"
	case strings.IndexFunc(id, unicode.IsControl) >= 0:
		reason = "must not contain control characters"
	}
	if reason != "" {
		return &ValidationError{DeviceID: id, Reason: reason}
	}
	return nil
}

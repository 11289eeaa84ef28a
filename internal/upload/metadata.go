package upload

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dharsanguruparan/watchme-vault/internal/timestamp"
)

// Metadata is the decoded "metadata" form part.
type Metadata struct {
	DeviceID   string
	RecordedAt string

	recordedAtRaw json.RawMessage
}

var jsonNull = []byte("null")

// ParseMetadata decodes the metadata part. It must be a JSON object with
// non-empty device_id and recorded_at members. A recorded_at that is present
// but not a string is accepted here and rejected when the timestamp is parsed.
func ParseMetadata(raw []byte) (Metadata, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return Metadata{}, &Error{
			Kind:    KindMetadataInvalidJSON,
			Message: "Invalid metadata JSON format",
			Err:     err,
		}
	}

	var md Metadata
	deviceRaw, ok := present(fields, "device_id")
	if !ok {
		return Metadata{}, missing("device_id")
	}
	if err := json.Unmarshal(deviceRaw, &md.DeviceID); err != nil {
		return Metadata{}, &Error{
			Kind:    KindDeviceIDInvalid,
			Field:   "device_id",
			Message: "Invalid device_id: must be a string",
			Err:     err,
		}
	}
	if md.DeviceID == "" {
		return Metadata{}, missing("device_id")
	}

	recordedRaw, ok := present(fields, "recorded_at")
	if !ok {
		return Metadata{}, missing("recorded_at")
	}
	md.recordedAtRaw = recordedRaw
	if json.Unmarshal(recordedRaw, &md.RecordedAt) == nil && md.RecordedAt == "" {
		return Metadata{}, missing("recorded_at")
	}
	return md, nil
}

// Timestamp parses RecordedAt, keeping the offset the device sent.
func (md Metadata) Timestamp() (timestamp.Timestamp, error) {
	if md.RecordedAt == "" && len(md.recordedAtRaw) > 0 {
		return timestamp.Timestamp{}, &timestamp.ParseError{
			Input: string(md.recordedAtRaw),
			Err:   timestamp.ErrNotString,
		}
	}
	return timestamp.Parse(md.RecordedAt)
}

func present(fields map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	raw, ok := fields[name]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
		return nil, false
	}
	return raw, true
}

func missing(field string) *Error {
	return &Error{
		Kind:    KindMissingField,
		Field:   field,
		Message: fmt.Sprintf("%s is required in metadata", field),
	}
}

// Package model contains the records shared between the ingest path, the
// metadata store and the background worker.
package model

import (
	"time"

	"github.com/dharsanguruparan/watchme-vault/internal/timestamp"
)

// RecordingStatus tracks downstream processing of a recording. The ingest
// service only ever writes StatusPending; processors own the later states.
type RecordingStatus string

const StatusPending RecordingStatus = "pending"

// Recording is one row in the audio_files table. RecordedAt keeps the offset
// the device sent, and (DeviceID, RecordedAt) identifies the row.
type Recording struct {
	DeviceID   string
	RecordedAt timestamp.Timestamp
	FilePath   string
	Status     RecordingStatus
	CreatedAt  time.Time
}

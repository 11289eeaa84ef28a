package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type flag bool

func (f flag) Configured() bool { return bool(f) }

func TestReport(t *testing.T) {
	fixed := time.Date(2025, 7, 19, 4, 30, 0, 0, time.UTC)
	tests := []struct {
		name     string
		store    Configurable
		database Configurable
		s3, db   bool
	}{
		{"nothing configured", nil, nil, false, false},
		{"store only", flag(true), nil, true, false},
		{"database only", nil, flag(true), false, true},
		{"client present but unconfigured", flag(false), flag(true), false, true},
		{"both", flag(true), flag(true), true, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NewReporter(tc.store, tc.database)
			r.now = func() time.Time { return fixed }

			assert.Equal(t, Report{
				Status:             "healthy",
				Timestamp:          fixed,
				S3Configured:       tc.s3,
				DatabaseConfigured: tc.db,
			}, r.Report())
		})
	}
}

// Package health reports which backing services the process is configured
// for. It never makes a network call.
package health

import "time"

const StatusHealthy = "healthy"

// Configurable is implemented by the object store and the registrar.
type Configurable interface {
	Configured() bool
}

// Report is served at / and /health.
type Report struct {
	Status             string    `json:"status"`
	Timestamp          time.Time `json:"timestamp"`
	S3Configured       bool      `json:"s3_configured"`
	DatabaseConfigured bool      `json:"database_configured"`
}

// Reporter builds health reports from the configured dependencies.
type Reporter struct {
	store    Configurable
	database Configurable
	now      func() time.Time
}

// NewReporter accepts nil for backends the process runs without.
func NewReporter(store, database Configurable) *Reporter {
	return &Reporter{store: store, database: database, now: time.Now}
}

func (r *Reporter) Report() Report {
	return Report{
		Status:             StatusHealthy,
		Timestamp:          r.now().UTC(),
		S3Configured:       configured(r.store),
		DatabaseConfigured: configured(r.database),
	}
}

func configured(c Configurable) bool {
	return c != nil && c.Configured()
}

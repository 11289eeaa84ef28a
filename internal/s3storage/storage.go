// Package s3storage writes recordings to an S3 compatible object store. Two
// backends exist: MinIO (self-hosted, local development) and AWS S3.
package s3storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dharsanguruparan/watchme-vault/internal/config"
)

const audioContentType = "audio/wav"

var (
	ErrNotConfigured  = errors.New("object storage is not configured")
	ErrObjectNotFound = errors.New("object not found")
)

// ObjectInfo is what a stat call reports about a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	ETag         string
	LastModified time.Time
}

// Store is implemented by both backends.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64) error
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	Configured() bool
}

// New builds the backend selected by cfg.Backend. It returns ErrNotConfigured
// when no bucket is set so callers can run without a store.
func New(ctx context.Context, cfg config.S3Config) (Store, error) {
	if cfg.Bucket == "" {
		return nil, ErrNotConfigured
	}
	switch cfg.Backend {
	case config.BackendMinIO:
		return NewMinIO(cfg)
	case config.BackendAWS, "":
		return NewAWS(ctx, cfg)
	}
	return nil, fmt.Errorf("unknown object store backend %q", cfg.Backend)
}

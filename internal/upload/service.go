// Package upload runs a single recording upload: it validates the metadata,
// derives the storage key from the device-local timestamp, writes the object
// and registers the metadata row.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/dharsanguruparan/watchme-vault/internal/model"
	"github.com/dharsanguruparan/watchme-vault/internal/registry"
	"github.com/dharsanguruparan/watchme-vault/internal/slot"
	"github.com/dharsanguruparan/watchme-vault/internal/storagekey"
)

const (
	// DefaultMaxFileSize is 100 MiB; a file of exactly this many bytes is accepted.
	DefaultMaxFileSize int64 = 100 << 20
	// UploadMethod and StatusOK are echoed in every Result.
	UploadMethod = "s3_direct"
	StatusOK     = "ok"
)

// ObjectStorage writes object bytes under a key.
type ObjectStorage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64) error
	Configured() bool
}

// Notifier is told about every newly registered recording.
type Notifier interface {
	RecordingRegistered(ctx context.Context, rec model.Recording) error
}

// Request is one upload. Size is the number of bytes the transport actually
// counted while reading the file, never a client supplied header.
type Request struct {
	Metadata []byte
	Body     io.Reader
	Size     int64
}

// Result is returned on success.
type Result struct {
	Status       string `json:"status"`
	S3Key        string `json:"s3_key"`
	DeviceID     string `json:"device_id"`
	RecordedAt   string `json:"recorded_at"`
	FileSize     int64  `json:"file_size"`
	UploadMethod string `json:"upload_method"`
	TimezoneInfo string `json:"timezone_info"`
}

// Option configures a Service.
type Option func(*Service)

// WithMaxFileSize overrides the upload limit; non-positive values are ignored.
func WithMaxFileSize(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxFileSize = n
		}
	}
}

// WithNotifier sets the notifier told about new registrations.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// Service is safe for concurrent use as long as its collaborators are.
type Service struct {
	store       ObjectStorage
	registrar   registry.Registrar
	notifier    Notifier
	maxFileSize int64
}

// NewService constructs an upload service.
func NewService(store ObjectStorage, registrar registry.Registrar, opts ...Option) *Service {
	s := &Service{
		store:       store,
		registrar:   registrar,
		maxFileSize: DefaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxFileSize is the largest accepted file in bytes.
func (s *Service) MaxFileSize() int64 { return s.maxFileSize }

// Submit processes req. Every failure is an *Error; validation failures are
// reported before the object store is touched. The object is written before
// the metadata row, and nothing is rolled back if registration fails.
func (s *Service) Submit(ctx context.Context, req Request) (*Result, error) {
	logger := zerolog.Ctx(ctx)

	md, err := ParseMetadata(req.Metadata)
	if err != nil {
		return nil, err
	}

	if req.Size > s.maxFileSize {
		return nil, &Error{
			Kind:    KindFileSizeExceeded,
			Field:   "file",
			Message: fmt.Sprintf("File size exceeds the maximum of %d bytes", s.maxFileSize),
		}
	}

	ts, err := md.Timestamp()
	if err != nil {
		return nil, &Error{
			Kind:    KindTimestampParseError,
			Field:   "recorded_at",
			Message: fmt.Sprintf("Invalid recorded_at format: %v", err),
			Err:     err,
		}
	}

	key, err := storagekey.Build(md.DeviceID, slot.For(ts))
	if err != nil {
		reason := err.Error()
		var vErr *storagekey.ValidationError
		if errors.As(err, &vErr) {
			reason = vErr.Reason
		}
		return nil, &Error{
			Kind:    KindDeviceIDInvalid,
			Field:   "device_id",
			Message: "Invalid device_id: " + reason,
			Err:     err,
		}
	}
	objectKey := key.String()

	if s.store == nil || !s.store.Configured() {
		return nil, storeError(objectKey, errors.New("object storage is not configured"))
	}
	if err := s.store.Put(ctx, objectKey, req.Body, req.Size); err != nil {
		return nil, storeError(objectKey, err)
	}
	logger.Debug().Str("key", objectKey).Int64("bytes", req.Size).Msg("object stored")

	rec := model.Recording{
		DeviceID:   md.DeviceID,
		RecordedAt: ts,
		FilePath:   objectKey,
		Status:     model.StatusPending,
	}
	if s.registrar == nil || !s.registrar.Configured() {
		return nil, registrationError(objectKey, errors.New("database is not configured"))
	}
	if err := s.registrar.Register(ctx, rec); err != nil {
		if errors.Is(err, registry.ErrDuplicate) {
			return nil, &Error{
				Kind: KindMetadataDuplicateConflict,
				Message: fmt.Sprintf("Recording for device %s at %s is already registered",
					md.DeviceID, md.RecordedAt),
				Key: objectKey,
				Err: err,
			}
		}
		return nil, registrationError(objectKey, err)
	}

	if s.notifier != nil {
		if err := s.notifier.RecordingRegistered(ctx, rec); err != nil {
			logger.Warn().Err(err).Str("key", objectKey).Msg("notify registered recording")
		}
	}

	return &Result{
		Status:       StatusOK,
		S3Key:        objectKey,
		DeviceID:     md.DeviceID,
		RecordedAt:   md.RecordedAt,
		FileSize:     req.Size,
		UploadMethod: UploadMethod,
		TimezoneInfo: ts.OffsetString(),
	}, nil
}

func storeError(key string, err error) *Error {
	return &Error{
		Kind:    KindObjectStoreWriteError,
		Message: fmt.Sprintf("Failed to upload file to storage: %v", err),
		Key:     key,
		Err:     err,
	}
}

func registrationError(key string, err error) *Error {
	return &Error{
		Kind:    KindMetadataRegistrationError,
		Message: fmt.Sprintf("Failed to register metadata: %v", err),
		Key:     key,
		Err:     err,
	}
}

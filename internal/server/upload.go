package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/dharsanguruparan/watchme-vault/internal/upload"
)

const (
	maxMetadataBytes = 64 << 10
	// multipartOverhead bounds everything in the body besides the file bytes.
	multipartOverhead = 1 << 20

	kindInvalidMultipart = "invalid_multipart"
	kindMissingFile      = "missing_file"
	kindInternal         = "internal_error"
)

type errorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	Detail string `json:"detail"`
	S3Key  string `json:"s3_key,omitempty"`
}

// spooledFile is an uploaded file part written to disk so it can be counted
// and re-read by the store client.
type spooledFile struct {
	f    *os.File
	size int64
}

func (s *spooledFile) Close() {
	if s == nil {
		return
	}
	name := s.f.Name()
	_ = s.f.Close()
	_ = os.Remove(name)
}

// handleUpload reads the multipart parts "metadata" and "file" and hands them
// to the uploader. File bytes are counted while spooling, so the size check
// never trusts a client header. At most max+1 bytes are read from the file
// part: that is enough to tell an oversized file apart.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	maxSize := s.uploader.MaxFileSize()
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	mr, err := r.MultipartReader()
	if err != nil {
		s.respondTransportError(w, r, http.StatusBadRequest, kindInvalidMultipart, "expecting multipart/form-data")
		return
	}

	var (
		metadata []byte
		spool    *spooledFile
		tooLarge bool
	)
	defer func() { spool.Close() }()

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				tooLarge = true
				break
			}
			s.respondTransportError(w, r, http.StatusBadRequest, kindInvalidMultipart, "failed to read upload")
			return
		}

		switch part.FormName() {
		case "metadata":
			metadata, err = io.ReadAll(io.LimitReader(part, maxMetadataBytes+1))
			if len(metadata) > maxMetadataBytes {
				metadata = nil
			}
		case "file":
			if spool == nil {
				spool, err = s.spool(part, maxSize)
			}
		}
		_ = part.Close()
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				tooLarge = true
				break
			}
			s.respondTransportError(w, r, http.StatusBadRequest, kindInvalidMultipart, "failed to read upload")
			return
		}
		if spool != nil && spool.size > maxSize {
			tooLarge = true
		}
		if tooLarge {
			break
		}
	}

	req := upload.Request{Metadata: metadata}
	switch {
	case tooLarge:
		if metadata == nil {
			s.respondUploadError(w, r, &upload.Error{
				Kind:    upload.KindFileSizeExceeded,
				Field:   "file",
				Message: fmt.Sprintf("File size exceeds the maximum of %d bytes", maxSize),
			})
			return
		}
		req.Size = maxSize + 1
	case spool == nil:
		if _, err := upload.ParseMetadata(metadata); err != nil {
			s.respondUploadError(w, r, err)
			return
		}
		s.respondTransportError(w, r, http.StatusBadRequest, kindMissingFile, "file is required")
		return
	default:
		if _, err := spool.f.Seek(0, io.SeekStart); err != nil {
			s.respondTransportError(w, r, http.StatusInternalServerError, kindInternal, "failed to rewind upload")
			return
		}
		req.Body = spool.f
		req.Size = spool.size
	}

	res, err := s.uploader.Submit(ctx, req)
	if err != nil {
		s.respondUploadError(w, r, err)
		return
	}
	observeUpload(upload.StatusOK, res.FileSize)
	zerolog.Ctx(ctx).Info().
		Str("device_id", res.DeviceID).
		Str("recorded_at", res.RecordedAt).
		Str("key", res.S3Key).
		Int64("bytes", res.FileSize).
		Msg("recording uploaded")
	respondJSON(w, http.StatusOK, res)
}

// spool copies at most limit+1 bytes of r into a temp file.
func (s *Server) spool(r io.Reader, limit int64) (*spooledFile, error) {
	f, err := os.CreateTemp(s.cfg.TempDir, "watchme-vault-*.wav")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	sf := &spooledFile{f: f}
	n, err := io.Copy(f, io.LimitReader(r, limit+1))
	if err != nil {
		sf.Close()
		return nil, err
	}
	sf.size = n
	return sf, nil
}

func statusFor(kind upload.Kind) int {
	switch kind {
	case upload.KindFileSizeExceeded:
		return http.StatusRequestEntityTooLarge
	case upload.KindMetadataDuplicateConflict:
		return http.StatusConflict
	case upload.KindObjectStoreWriteError:
		return http.StatusBadGateway
	case upload.KindMetadataRegistrationError:
		return http.StatusInternalServerError
	}
	if kind.Validation() {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) respondUploadError(w http.ResponseWriter, r *http.Request, err error) {
	logger := zerolog.Ctx(r.Context())
	var uploadErr *upload.Error
	if !errors.As(err, &uploadErr) {
		logger.Error().Err(err).Msg("upload failed")
		observeUpload(kindInternal, 0)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Status: "error", Error: kindInternal, Detail: "internal error"})
		return
	}

	event := logger.Warn()
	if !uploadErr.Kind.Validation() && uploadErr.Kind != upload.KindMetadataDuplicateConflict {
		event = logger.Error()
	}
	event.Err(err).Str("kind", string(uploadErr.Kind)).Str("key", uploadErr.Key).Msg("upload rejected")
	observeUpload(string(uploadErr.Kind), 0)

	body := errorResponse{Status: "error", Error: string(uploadErr.Kind), Detail: uploadErr.Message}
	if uploadErr.Kind == upload.KindMetadataDuplicateConflict {
		body.S3Key = uploadErr.Key
	}
	respondJSON(w, statusFor(uploadErr.Kind), body)
}

func (s *Server) respondTransportError(w http.ResponseWriter, r *http.Request, status int, kind, detail string) {
	zerolog.Ctx(r.Context()).Warn().Str("kind", kind).Msg(detail)
	observeUpload(kind, 0)
	respondJSON(w, status, errorResponse{Status: "error", Error: kind, Detail: detail})
}

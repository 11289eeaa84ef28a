package upload

import (
	"errors"
)

// Kind classifies why an upload did not succeed. The string values are part of
// the HTTP error body.
type Kind string

const (
	KindMetadataInvalidJSON       Kind = "metadata_invalid_json"
	KindMissingField              Kind = "missing_field"
	KindTimestampParseError       Kind = "timestamp_parse_error"
	KindDeviceIDInvalid           Kind = "device_id_invalid"
	KindFileSizeExceeded          Kind = "file_size_exceeded"
	KindObjectStoreWriteError     Kind = "object_store_write_error"
	KindMetadataDuplicateConflict Kind = "metadata_duplicate_conflict"
	KindMetadataRegistrationError Kind = "metadata_registration_error"
)

// Validation reports whether the kind is detected before anything is written.
func (k Kind) Validation() bool {
	switch k {
	case KindMetadataInvalidJSON, KindMissingField, KindTimestampParseError,
		KindDeviceIDInvalid, KindFileSizeExceeded:
		return true
	}
	return false
}

// Error is the terminal failure of a single upload. Message is safe to return
// to the caller; Err holds the cause when there is one.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	// Key is the storage key computed for the request, set once it is known.
	Key string
	Err error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind, so the sentinels below work with
// errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrMetadataInvalidJSON       = &Error{Kind: KindMetadataInvalidJSON}
	ErrMissingField              = &Error{Kind: KindMissingField}
	ErrTimestampParse            = &Error{Kind: KindTimestampParseError}
	ErrDeviceIDInvalid           = &Error{Kind: KindDeviceIDInvalid}
	ErrFileSizeExceeded          = &Error{Kind: KindFileSizeExceeded}
	ErrObjectStoreWrite          = &Error{Kind: KindObjectStoreWriteError}
	ErrMetadataDuplicateConflict = &Error{Kind: KindMetadataDuplicateConflict}
	ErrMetadataRegistration      = &Error{Kind: KindMetadataRegistrationError}
)

// KindOf returns the kind carried by err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

package store

import "errors"

var (
	// ErrStorageUnavailable means the byte store cannot be written at all.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrQuotaExceeded means the byte store refused a write for lack of space.
	// The previous value under the key is unchanged.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrSerialization means a value could not be encoded; nothing was written.
	ErrSerialization = errors.New("serialization failed")
)

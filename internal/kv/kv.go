// Package kv defines the capacity-limited string key-value store that the
// record store persists into.
package kv

import "errors"

var (
	// ErrQuotaExceeded is returned by Set when the write would exceed the
	// backend's capacity. The previous value is left in place.
	ErrQuotaExceeded = errors.New("kv: quota exceeded")

	// ErrUnavailable is returned when the backend cannot be used at all.
	ErrUnavailable = errors.New("kv: storage unavailable")
)

// Store is a string-to-string store. Set either fully replaces the value or
// fails and leaves the old value untouched.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
	Keys() ([]string, error)
}

// Quota is implemented by backends that know their exact ceiling in bytes.
type Quota interface {
	Capacity() int64
}

// EntrySize is the number of bytes an entry counts against a quota.
func EntrySize(key, value string) int64 {
	return int64(len(key) + len(value))
}

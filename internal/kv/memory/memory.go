// Package memory is an in-process kv.Store. It is the fake used by tests and
// the backend behind `storage.backend: memory`.
package memory

import (
	"sort"
	"sync"

	"github.com/faheemho18/monefy-pwa-clone/internal/kv"
)

type Store struct {
	mu       sync.Mutex
	data     map[string]string
	used     int64
	capacity int64 // 0 means unlimited
	disabled bool
}

type Option func(*Store)

// WithCapacity limits the total bytes (keys plus values) the store holds.
func WithCapacity(n int64) Option {
	return func(s *Store) { s.capacity = n }
}

// Disabled makes every call fail with kv.ErrUnavailable, like a browser
// profile with storage switched off.
func Disabled() Option {
	return func(s *Store) { s.disabled = true }
}

func New(opts ...Option) *Store {
	s := &Store{data: map[string]string{}}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SetDisabled toggles availability at runtime.
func (s *Store) SetDisabled(d bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disabled = d
}

func (s *Store) Capacity() int64 {
	return s.capacity
}

func (s *Store) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disabled {
		return "", false, kv.ErrUnavailable
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disabled {
		return kv.ErrUnavailable
	}
	used := s.used + kv.EntrySize(key, value)
	if old, ok := s.data[key]; ok {
		used -= kv.EntrySize(key, old)
	}
	if s.capacity > 0 && used > s.capacity {
		return kv.ErrQuotaExceeded
	}
	s.data[key] = value
	s.used = used
	return nil
}

func (s *Store) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disabled {
		return kv.ErrUnavailable
	}
	if old, ok := s.data[key]; ok {
		s.used -= kv.EntrySize(key, old)
		delete(s.data, key)
	}
	return nil
}

func (s *Store) Keys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disabled {
		return nil, kv.ErrUnavailable
	}
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

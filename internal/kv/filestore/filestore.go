// Package filestore is a kv.Store that keeps one file per key in a directory.
package filestore

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/faheemho18/monefy-pwa-clone/internal/kv"
)

const (
	valueExt  = ".val"
	tmpPrefix = ".tmp-"
)

var keyEncoding = base64.RawURLEncoding

type Store struct {
	mu       sync.Mutex
	dir      string
	capacity int64
}

// New opens (creating if needed) a store rooted at dir. capacity <= 0 means
// unlimited.
func New(dir string, capacity int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}
	return &Store{dir: dir, capacity: capacity}, nil
}

func (s *Store) Capacity() int64 {
	return s.capacity
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: reading %q: %w", kv.ErrUnavailable, key, err)
	}
	return string(data), true, nil
}

func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.capacity > 0 {
		used, err := s.usedLocked()
		if err != nil {
			return err
		}
		used += kv.EntrySize(key, value)
		if old, err := os.ReadFile(s.path(key)); err == nil {
			used -= kv.EntrySize(key, string(old))
		}
		if used > s.capacity {
			return kv.ErrQuotaExceeded
		}
	}

	f, err := os.CreateTemp(s.dir, tmpPrefix+"*")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %w", kv.ErrUnavailable, err)
	}
	tmp := f.Name()
	if _, err := f.WriteString(value); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("%w: writing %q: %w", kv.ErrUnavailable, key, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: closing %q: %w", kv.ErrUnavailable, key, err)
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: replacing %q: %w", kv.ErrUnavailable, key, err)
	}
	return nil
}

func (s *Store) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: removing %q: %w", kv.ErrUnavailable, key, err)
	}
	return nil
}

func (s *Store) Keys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keysLocked()
}

func (s *Store) keysLocked() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: listing store dir: %w", kv.ErrUnavailable, err)
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, tmpPrefix) || !strings.HasSuffix(name, valueExt) {
			continue
		}
		raw, err := keyEncoding.DecodeString(strings.TrimSuffix(name, valueExt))
		if err != nil {
			continue // not ours
		}
		keys = append(keys, string(raw))
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) usedLocked() (int64, error) {
	keys, err := s.keysLocked()
	if err != nil {
		return 0, err
	}
	var used int64
	for _, k := range keys {
		info, err := os.Stat(s.path(k))
		if err != nil {
			continue
		}
		used += int64(len(k)) + info.Size()
	}
	return used, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, keyEncoding.EncodeToString([]byte(key))+valueExt)
}

// Package store maps the transaction and category collections and the opaque
// app state onto a kv.Store, one reserved key each.
//
// The store assumes a single writer per process. Two processes sharing a
// backend get last-write-wins per key with no merge and no notification.
package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/faheemho18/monefy-pwa-clone/internal/codec"
	"github.com/faheemho18/monefy-pwa-clone/internal/kv"
	"github.com/faheemho18/monefy-pwa-clone/internal/model"
)

// Reserved keys.
const (
	KeyTransactions = "monefy_transactions"
	KeyCategories   = "monefy_categories"
	KeyAppState     = "monefy_app_state"
	KeyBackup       = "monefy_backup"
)

const probeKey = "__monefy_probe__"

// LiveKeys are the keys Clear removes.
var LiveKeys = []string{KeyTransactions, KeyCategories, KeyAppState}

type Store struct {
	kv      kv.Store
	log     zerolog.Logger
	ceiling int64
}

type Option func(*Store)

// WithAssumedCeiling overrides the capacity assumed when the backend does not
// report one.
func WithAssumedCeiling(n int64) Option {
	return func(s *Store) { s.ceiling = n }
}

func New(backend kv.Store, log zerolog.Logger, opts ...Option) *Store {
	s := &Store{kv: backend, log: log, ceiling: DefaultCeiling}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Available reports whether the backend accepts writes right now. It writes
// and removes a probe key; a backend that is full at probe time reports false.
func (s *Store) Available() bool {
	return s.probe() == nil
}

func (s *Store) probe() error {
	if err := s.kv.Set(probeKey, "1"); err != nil {
		return err
	}
	return s.kv.Remove(probeKey)
}

// readable reports whether reads should reach the backend. A full backend
// still serves reads.
func (s *Store) readable() bool {
	err := s.probe()
	return err == nil || errors.Is(err, kv.ErrQuotaExceeded)
}

// SetTransactions replaces the stored transaction collection.
func (s *Store) SetTransactions(txns []model.Transaction) error {
	data, err := codec.EncodeTransactions(txns)
	if err != nil {
		return fmt.Errorf("%w: transactions: %w", ErrSerialization, err)
	}
	return s.write(KeyTransactions, string(data))
}

// Transactions returns the stored transactions. Missing or undecodable data
// yields an empty slice.
func (s *Store) Transactions() []model.Transaction {
	raw, ok := s.read(KeyTransactions)
	if !ok {
		return []model.Transaction{}
	}
	txns, err := codec.DecodeTransactions([]byte(raw))
	if err != nil {
		s.discard(KeyTransactions, err)
		return []model.Transaction{}
	}
	return txns
}

// SetCategories replaces the stored category collection.
func (s *Store) SetCategories(cats []model.Category) error {
	data, err := codec.EncodeCategories(cats)
	if err != nil {
		return fmt.Errorf("%w: categories: %w", ErrSerialization, err)
	}
	return s.write(KeyCategories, string(data))
}

// Categories returns the stored categories; see Transactions.
func (s *Store) Categories() []model.Category {
	raw, ok := s.read(KeyCategories)
	if !ok {
		return []model.Category{}
	}
	cats, err := codec.DecodeCategories([]byte(raw))
	if err != nil {
		s.discard(KeyCategories, err)
		return []model.Category{}
	}
	return cats
}

// SetAppState stores the blob as given. It must be valid JSON; nil stores null.
func (s *Store) SetAppState(state model.AppState) error {
	if state == nil {
		state = model.AppState("null")
	}
	if !json.Valid(state) {
		return fmt.Errorf("%w: app state is not valid JSON", ErrSerialization)
	}
	return s.write(KeyAppState, string(state))
}

// AppState returns the stored blob, or nil if it is absent, null or corrupted.
func (s *Store) AppState() model.AppState {
	raw, ok := s.read(KeyAppState)
	if !ok || raw == "null" {
		return nil
	}
	if !json.Valid([]byte(raw)) {
		s.discard(KeyAppState, errors.New("invalid JSON"))
		return nil
	}
	return model.AppState(raw)
}

// RecoveryPoint returns the raw document saved by the last backup.
func (s *Store) RecoveryPoint() (string, bool) {
	return s.read(KeyBackup)
}

// SetRecoveryPoint saves an encoded backup document under KeyBackup.
func (s *Store) SetRecoveryPoint(doc string) error {
	return s.write(KeyBackup, doc)
}

// Clear removes the live keys. The recovery point survives.
func (s *Store) Clear() {
	s.remove(LiveKeys...)
}

// ClearAll removes the live keys and the recovery point.
func (s *Store) ClearAll() {
	s.remove(append(LiveKeys, KeyBackup)...)
}

func (s *Store) write(key, value string) error {
	if err := s.probe(); err != nil {
		if errors.Is(err, kv.ErrQuotaExceeded) {
			return fmt.Errorf("writing %s: %w", key, ErrQuotaExceeded)
		}
		return fmt.Errorf("writing %s: %w: %w", key, ErrStorageUnavailable, err)
	}
	err := s.kv.Set(key, value)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, kv.ErrQuotaExceeded):
		return fmt.Errorf("writing %s (%d bytes): %w", key, kv.EntrySize(key, value), ErrQuotaExceeded)
	case errors.Is(err, kv.ErrUnavailable):
		return fmt.Errorf("writing %s: %w: %w", key, ErrStorageUnavailable, err)
	default:
		return fmt.Errorf("writing %s: %w", key, err)
	}
}

func (s *Store) read(key string) (string, bool) {
	if !s.readable() {
		return "", false
	}
	v, ok, err := s.kv.Get(key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("read failed, treating as empty")
		return "", false
	}
	return v, ok
}

func (s *Store) remove(keys ...string) {
	for _, k := range keys {
		if err := s.kv.Remove(k); err != nil {
			s.log.Debug().Err(err).Str("key", k).Msg("remove failed")
		}
	}
}

func (s *Store) discard(key string, err error) {
	s.log.Warn().Err(err).Str("key", key).Msg("stored value is corrupted, treating as empty")
}

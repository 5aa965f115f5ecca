// Package backup snapshots the record store into a versioned JSON document and
// restores it again. Restore writes transactions, categories and app state one
// after another; if a write fails midway the earlier ones stay applied.
package backup

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/faheemho18/monefy-pwa-clone/internal/store"
)

// ErrNoRecoveryPoint is returned by RestoreRecoveryPoint when no backup has
// been taken yet.
var ErrNoRecoveryPoint = errors.New("no recovery point saved")

type Manager struct {
	store *store.Store
	now   func() time.Time
	log   zerolog.Logger
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

func NewManager(s *store.Store, opts ...Option) *Manager {
	m := &Manager{store: s, now: time.Now, log: zerolog.Nop()}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Create snapshots the store and saves the snapshot as the recovery point.
// The live collections are not touched. When the recovery point cannot be
// saved the document is still returned alongside the error.
func (m *Manager) Create() (Document, error) {
	doc, _, err := m.create()
	return doc, err
}

func (m *Manager) create() (Document, string, error) {
	doc := m.Snapshot()
	text, err := Encode(doc)
	if err != nil {
		return Document{}, "", err
	}
	if err := m.store.SetRecoveryPoint(text); err != nil {
		return doc, text, fmt.Errorf("saving recovery point: %w", err)
	}
	return doc, text, nil
}

// Snapshot reads the current dataset without saving anything.
func (m *Manager) Snapshot() Document {
	return Document{
		Timestamp:     m.now().UTC(),
		FormatVersion: FormatVersion,
		Payload: Payload{
			Transactions: m.store.Transactions(),
			Categories:   m.store.Categories(),
			AppState:     m.store.AppState(),
		},
	}
}

// Export returns the encoded backup text. A recovery point that cannot be
// saved (for example because the store is full) is logged, not returned, so a
// full store can still be exported.
func (m *Manager) Export() (string, error) {
	_, text, err := m.create()
	if text == "" {
		return "", err
	}
	if err != nil {
		m.log.Warn().Err(err).Msg("exported without saving a recovery point")
	}
	return text, nil
}

// Restore validates doc and then overwrites the live collections with it.
func (m *Manager) Restore(doc Document) error {
	if err := Validate(doc); err != nil {
		return err
	}

	if err := m.store.SetTransactions(doc.Payload.Transactions); err != nil {
		return fmt.Errorf("restoring transactions: %w", err)
	}
	if err := m.store.SetCategories(doc.Payload.Categories); err != nil {
		return fmt.Errorf("restoring categories (transactions already restored): %w", err)
	}
	if doc.Payload.AppState != nil {
		if err := m.store.SetAppState(doc.Payload.AppState); err != nil {
			return fmt.Errorf("restoring app state (collections already restored): %w", err)
		}
	}

	m.log.Info().
		Int("transactions", len(doc.Payload.Transactions)).
		Int("categories", len(doc.Payload.Categories)).
		Time("taken_at", doc.Timestamp).
		Msg("restored backup")
	return nil
}

// RestoreText parses text and restores it, returning the restored document.
func (m *Manager) RestoreText(text string) (Document, error) {
	doc, err := Parse(text)
	if err != nil {
		return Document{}, err
	}
	if err := m.Restore(doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Import restores a document read from outside the store, such as a file or
// stdin. A leading byte order mark is ignored.
func (m *Manager) Import(data []byte) (Document, error) {
	doc, err := ParseData(data)
	if err != nil {
		return Document{}, err
	}
	if err := m.Restore(doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// RestoreRecoveryPoint restores the document saved by the last Create.
func (m *Manager) RestoreRecoveryPoint() (Document, error) {
	text, ok := m.store.RecoveryPoint()
	if !ok {
		return Document{}, ErrNoRecoveryPoint
	}
	return m.RestoreText(text)
}

// Package sqlite is a kv.Store backed by a single SQLite table.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/faheemho18/monefy-pwa-clone/internal/kv"
)

type Store struct {
	db       *sql.DB
	capacity int64
}

// Open opens (creating and migrating if needed) the database at dbPath.
// capacity <= 0 means unlimited.
func Open(dbPath string, capacity int64) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection serialises writers and keeps the quota check honest.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, capacity: capacity}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Capacity() int64 {
	return s.capacity
}

func (s *Store) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM entries WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: get %q: %w", kv.ErrUnavailable, key, err)
	}
	return value, true, nil
}

func (s *Store) Set(key, value string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: begin: %w", kv.ErrUnavailable, err)
	}
	defer tx.Rollback()

	if s.capacity > 0 {
		var others int64
		err := tx.QueryRow(
			`SELECT COALESCE(SUM(length(CAST(key AS BLOB)) + length(CAST(value AS BLOB))), 0)
			 FROM entries WHERE key <> ?`, key).Scan(&others)
		if err != nil {
			return fmt.Errorf("%w: measuring usage: %w", kv.ErrUnavailable, err)
		}
		if others+kv.EntrySize(key, value) > s.capacity {
			return kv.ErrQuotaExceeded
		}
	}

	_, err = tx.Exec(
		`INSERT INTO entries (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("%w: set %q: %w", kv.ErrUnavailable, key, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", kv.ErrUnavailable, err)
	}
	return nil
}

func (s *Store) Remove(key string) error {
	if _, err := s.db.Exec(`DELETE FROM entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("%w: remove %q: %w", kv.ErrUnavailable, key, err)
	}
	return nil
}

func (s *Store) Keys() ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM entries ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("%w: list keys: %w", kv.ErrUnavailable, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("%w: scan key: %w", kv.ErrUnavailable, err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

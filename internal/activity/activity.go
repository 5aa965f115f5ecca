// Package activity keeps an append-only CSV record of mutating commands.
package activity

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Action names a kind of change recorded in the log.
type Action string

const (
	ActionAdd     Action = "add"
	ActionEdit    Action = "edit"
	ActionDelete  Action = "delete"
	ActionImport  Action = "import"
	ActionRestore Action = "restore"
	ActionClear   Action = "clear"
	ActionSeed    Action = "seed"
	ActionBackup  Action = "backup"
)

// Entry is one row of the activity log.
type Entry struct {
	Timestamp time.Time
	Action    Action
	Subject   string // "transaction", "category", "backup", "store"
	RecordID  string
	Details   string
}

// Header is the first line of activity.csv.
const Header = "timestamp,action,subject,record_id,details"

const (
	numFields  = 5
	logDir     = "logs"
	logFile    = "activity.csv"
	colTime    = 0
	colAction  = 1
	colSubject = 2
	colRecord  = 3
	colDetails = 4
)

// Path returns the log file location inside dataDir.
func Path(dataDir string) string {
	return filepath.Join(dataDir, logDir, logFile)
}

func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTime] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colAction] = string(e.Action)
	row[colSubject] = e.Subject
	row[colRecord] = e.RecordID
	row[colDetails] = e.Details
	return row
}

func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	ts, err := time.Parse(time.RFC3339, record[colTime])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTime], err)
	}
	return Entry{
		Timestamp: ts,
		Action:    Action(record[colAction]),
		Subject:   record[colSubject],
		RecordID:  record[colRecord],
		Details:   record[colDetails],
	}, nil
}

// Append adds entries to the log, writing the header when the file is new.
func Append(dataDir string, entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Join(dataDir, logDir), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := Path(dataDir)
	_, statErr := os.Stat(path)
	needsHeader := errors.Is(statErr, fs.ErrNotExist)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns every entry in the log. A missing log reads as empty.
func Read(dataDir string) ([]Entry, error) {
	f, err := os.Open(Path(dataDir))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()
	return ReadEntries(f)
}

// Tail returns the last n entries, oldest first.
func Tail(dataDir string, n int) ([]Entry, error) {
	entries, err := Read(dataDir)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}

func ReadEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading activity CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	entries := make([]Entry, 0, len(records)-1)
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

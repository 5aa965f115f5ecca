package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/faheemho18/monefy-pwa-clone/internal/codec"
	"github.com/faheemho18/monefy-pwa-clone/internal/model"
)

// FormatVersion is written into every new document. Documents with the same
// major version can be restored.
const FormatVersion = "1.0"

var (
	// ErrInvalidBackupFormat means the document failed structural checks.
	// Nothing has been written when it is returned.
	ErrInvalidBackupFormat = errors.New("invalid backup format")

	// ErrDeserialization means the document text or a record in it could not be decoded.
	ErrDeserialization = errors.New("deserialization failed")
)

// Document is a self-contained snapshot of the local dataset.
type Document struct {
	Timestamp     time.Time
	FormatVersion string
	Payload       Payload
}

type Payload struct {
	Transactions []model.Transaction
	Categories   []model.Category
	AppState     model.AppState // nil when absent
}

type documentWire struct {
	Timestamp     codec.Instant `json:"timestamp"`
	FormatVersion string        `json:"formatVersion"`
	Payload       payloadWire   `json:"payload"`
}

type payloadWire struct {
	Transactions json.RawMessage `json:"transactions"`
	Categories   json.RawMessage `json:"categories"`
	AppState     json.RawMessage `json:"appState"`
}

// Encode renders doc as indented JSON.
func Encode(doc Document) (string, error) {
	txns, err := codec.EncodeTransactions(doc.Payload.Transactions)
	if err != nil {
		return "", fmt.Errorf("encoding transactions: %w", err)
	}
	cats, err := codec.EncodeCategories(doc.Payload.Categories)
	if err != nil {
		return "", fmt.Errorf("encoding categories: %w", err)
	}
	state := json.RawMessage("null")
	if doc.Payload.AppState != nil {
		if !json.Valid(doc.Payload.AppState) {
			return "", errors.New("encoding app state: not valid JSON")
		}
		state = json.RawMessage(doc.Payload.AppState)
	}

	version := doc.FormatVersion
	if version == "" {
		version = FormatVersion
	}
	data, err := json.MarshalIndent(documentWire{
		Timestamp:     codec.Instant(doc.Timestamp),
		FormatVersion: version,
		Payload: payloadWire{
			Transactions: txns,
			Categories:   cats,
			AppState:     state,
		},
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding backup: %w", err)
	}
	return string(data), nil
}

// Parse decodes and validates a backup document. Every check runs before the
// caller gets a Document back, so a failed Parse never leads to a write.
func Parse(text string) (Document, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &top); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return Document{}, fmt.Errorf("%w: document is not a JSON object", ErrInvalidBackupFormat)
		}
		return Document{}, fmt.Errorf("%w: %w", ErrDeserialization, err)
	}
	if top == nil {
		return Document{}, fmt.Errorf("%w: document is null", ErrInvalidBackupFormat)
	}

	doc := Document{FormatVersion: FormatVersion}

	if raw, ok := top["formatVersion"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &doc.FormatVersion); err != nil {
			return Document{}, fmt.Errorf("%w: formatVersion is not a string", ErrInvalidBackupFormat)
		}
		if err := checkVersion(doc.FormatVersion); err != nil {
			return Document{}, err
		}
	}

	if raw, ok := top["timestamp"]; ok && !isNull(raw) {
		var ts codec.Instant
		if err := json.Unmarshal(raw, &ts); err != nil {
			return Document{}, fmt.Errorf("%w: timestamp: %w", ErrDeserialization, err)
		}
		doc.Timestamp = ts.Time()
	}

	rawPayload, ok := top["payload"]
	if !ok || isNull(rawPayload) {
		return Document{}, fmt.Errorf("%w: missing payload", ErrInvalidBackupFormat)
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(rawPayload, &payload); err != nil {
		return Document{}, fmt.Errorf("%w: payload is not an object", ErrInvalidBackupFormat)
	}

	rawTxns, ok := payload["transactions"]
	if !ok || !isArray(rawTxns) {
		return Document{}, fmt.Errorf("%w: payload.transactions must be an array", ErrInvalidBackupFormat)
	}
	txns, err := codec.DecodeTransactions(rawTxns)
	if err != nil {
		return Document{}, recordError("transactions", err)
	}
	doc.Payload.Transactions = txns

	doc.Payload.Categories = []model.Category{}
	if raw, ok := payload["categories"]; ok && !isNull(raw) {
		if !isArray(raw) {
			return Document{}, fmt.Errorf("%w: payload.categories must be an array", ErrInvalidBackupFormat)
		}
		cats, err := codec.DecodeCategories(raw)
		if err != nil {
			return Document{}, recordError("categories", err)
		}
		doc.Payload.Categories = cats
	}

	if raw, ok := payload["appState"]; ok && !isNull(raw) {
		doc.Payload.AppState = model.AppState(bytes.TrimSpace(raw))
	}

	return doc, nil
}

// Validate runs the structural checks Parse applies to text on an in-memory document.
func Validate(doc Document) error {
	if doc.Payload.Transactions == nil {
		return fmt.Errorf("%w: payload.transactions is missing", ErrInvalidBackupFormat)
	}
	if doc.FormatVersion != "" {
		if err := checkVersion(doc.FormatVersion); err != nil {
			return err
		}
	}
	seen := map[string]bool{}
	for _, t := range doc.Payload.Transactions {
		if seen[t.ID] {
			return fmt.Errorf("%w: duplicate transaction id %q", ErrInvalidBackupFormat, t.ID)
		}
		seen[t.ID] = true
	}
	seen = map[string]bool{}
	for _, c := range doc.Payload.Categories {
		if seen[c.ID] {
			return fmt.Errorf("%w: duplicate category id %q", ErrInvalidBackupFormat, c.ID)
		}
		seen[c.ID] = true
	}
	if doc.Payload.AppState != nil && !json.Valid(doc.Payload.AppState) {
		return fmt.Errorf("%w: appState is not valid JSON", ErrInvalidBackupFormat)
	}
	return nil
}

func checkVersion(v string) error {
	major, _, _ := strings.Cut(v, ".")
	n, err := strconv.Atoi(major)
	if err != nil {
		return fmt.Errorf("%w: unreadable formatVersion %q", ErrInvalidBackupFormat, v)
	}
	wantMajor, _, _ := strings.Cut(FormatVersion, ".")
	if strconv.Itoa(n) != wantMajor {
		return fmt.Errorf("%w: unsupported formatVersion %q (want %s.x)", ErrInvalidBackupFormat, v, wantMajor)
	}
	return nil
}

func recordError(what string, err error) error {
	if errors.Is(err, codec.ErrDuplicateID) {
		return fmt.Errorf("%w: %s: %w", ErrInvalidBackupFormat, what, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrDeserialization, what, err)
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

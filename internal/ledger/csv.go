package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/faheemho18/monefy-pwa-clone/internal/model"
)

// CSVHeader is the header of the spreadsheet export.
const CSVHeader = "id,occurred_at,kind,amount,category_id,category_name,description,sync_status,created_at,last_modified"

const (
	numFields       = 10
	timeFormat      = time.RFC3339Nano
	colID           = 0
	colOccurredAt   = 1
	colKind         = 2
	colAmount       = 3
	colCategoryID   = 4
	colCategoryName = 5
	colDescription  = 6
	colSyncStatus   = 7
	colCreatedAt    = 8
	colLastModified = 9
)

// WriteTransactionsCSV writes txns (including header). cats fills the
// category_name column; it may be nil.
func WriteTransactionsCSV(w io.Writer, txns []model.Transaction, cats *Categories) error {
	if cats == nil {
		cats = NewCategories(nil)
	}
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(CSVHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, t := range txns {
		if err := cw.Write(MarshalTransaction(t, cats.For(t).Name)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadTransactionsCSV reads rows written by WriteTransactionsCSV. The
// category_name column is ignored.
func ReadTransactionsCSV(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transactions CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var txns []model.Transaction
	for i, rec := range records[1:] {
		t, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, t)
	}
	return txns, nil
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(t model.Transaction, categoryName string) []string {
	row := make([]string, numFields)
	row[colID] = t.ID
	row[colOccurredAt] = t.OccurredAt.UTC().Format(timeFormat)
	row[colKind] = string(t.Kind)
	row[colAmount] = t.Amount.StringFixed(2)
	row[colCategoryID] = t.CategoryID
	row[colCategoryName] = categoryName
	row[colDescription] = t.Description
	row[colSyncStatus] = string(t.SyncStatus)
	if !t.CreatedAt.IsZero() {
		row[colCreatedAt] = t.CreatedAt.UTC().Format(timeFormat)
	}
	if !t.LastModified.IsZero() {
		row[colLastModified] = t.LastModified.UTC().Format(timeFormat)
	}
	return row
}

// UnmarshalTransaction converts a CSV row to a Transaction.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	occurred, err := parseTime(record[colOccurredAt])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing occurred_at %q: %w", record[colOccurredAt], err)
	}
	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}
	created, err := parseTime(record[colCreatedAt])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing created_at %q: %w", record[colCreatedAt], err)
	}
	modified, err := parseTime(record[colLastModified])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing last_modified %q: %w", record[colLastModified], err)
	}

	kind := model.Kind(record[colKind])
	if !kind.Valid() {
		return model.Transaction{}, fmt.Errorf("unknown kind %q", record[colKind])
	}

	return model.Transaction{
		ID:           record[colID],
		Amount:       amount,
		Kind:         kind,
		CategoryID:   record[colCategoryID],
		Description:  record[colDescription],
		OccurredAt:   occurred,
		SyncStatus:   model.SyncStatus(record[colSyncStatus]),
		CreatedAt:    created,
		LastModified: modified,
	}, nil
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

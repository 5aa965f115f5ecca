package codec

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/faheemho18/monefy-pwa-clone/internal/model"
)

type transactionWire struct {
	ID           string           `json:"id"`
	Amount       json.Number      `json:"amount"`
	Kind         model.Kind       `json:"kind"`
	CategoryID   string           `json:"categoryId"`
	Description  string           `json:"description"`
	OccurredAt   *Instant         `json:"occurredAt"`
	HouseholdID  string           `json:"householdId,omitempty"`
	UserID       string           `json:"userId,omitempty"`
	SyncStatus   model.SyncStatus `json:"syncStatus,omitempty"`
	LastModified *Instant         `json:"lastModified,omitempty"`
	CreatedAt    *Instant         `json:"createdAt,omitempty"`
}

type categoryWire struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Icon        string     `json:"icon"`
	Color       string     `json:"color"`
	Kind        model.Kind `json:"kind"`
	HouseholdID string     `json:"householdId,omitempty"`
	IsDefault   bool       `json:"isDefault"`
	Order       int        `json:"order"`
}

// EncodeTransactions serialises a transaction collection. A nil slice is
// written as an empty array.
func EncodeTransactions(txns []model.Transaction) ([]byte, error) {
	seen := make(map[string]bool, len(txns))
	rows := make([]transactionWire, 0, len(txns))
	for _, t := range txns {
		if seen[t.ID] {
			return nil, fmt.Errorf("%w: transaction %q", ErrDuplicateID, t.ID)
		}
		seen[t.ID] = true
		row, err := marshalTransaction(t)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return json.Marshal(rows)
}

// DecodeTransactions parses a transaction collection.
func DecodeTransactions(data []byte) ([]model.Transaction, error) {
	var rows []transactionWire
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decoding transactions: %w", err)
	}
	seen := make(map[string]bool, len(rows))
	txns := make([]model.Transaction, 0, len(rows))
	for i, r := range rows {
		t, err := unmarshalTransaction(r)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("%w: transaction %q", ErrDuplicateID, t.ID)
		}
		seen[t.ID] = true
		txns = append(txns, t)
	}
	return txns, nil
}

// EncodeCategories serialises a category collection.
func EncodeCategories(cats []model.Category) ([]byte, error) {
	seen := make(map[string]bool, len(cats))
	rows := make([]categoryWire, 0, len(cats))
	for _, c := range cats {
		if seen[c.ID] {
			return nil, fmt.Errorf("%w: category %q", ErrDuplicateID, c.ID)
		}
		seen[c.ID] = true
		rows = append(rows, categoryWire{
			ID:          c.ID,
			Name:        c.Name,
			Icon:        c.Icon,
			Color:       c.Color,
			Kind:        c.Kind,
			HouseholdID: c.HouseholdID,
			IsDefault:   c.IsDefault,
			Order:       c.Order,
		})
	}
	return json.Marshal(rows)
}

// DecodeCategories parses a category collection.
func DecodeCategories(data []byte) ([]model.Category, error) {
	var rows []categoryWire
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decoding categories: %w", err)
	}
	seen := make(map[string]bool, len(rows))
	cats := make([]model.Category, 0, len(rows))
	for i, r := range rows {
		if r.ID == "" {
			return nil, fmt.Errorf("category %d: missing id", i)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("%w: category %q", ErrDuplicateID, r.ID)
		}
		seen[r.ID] = true
		cats = append(cats, model.Category{
			ID:          r.ID,
			Name:        r.Name,
			Icon:        r.Icon,
			Color:       r.Color,
			Kind:        r.Kind,
			HouseholdID: r.HouseholdID,
			IsDefault:   r.IsDefault,
			Order:       r.Order,
		})
	}
	return cats, nil
}

func marshalTransaction(t model.Transaction) (transactionWire, error) {
	if !t.Amount.Equal(t.Amount.Round(2)) {
		return transactionWire{}, fmt.Errorf("%w: transaction %q amount %s", ErrAmountPrecision, t.ID, t.Amount)
	}
	occurred := Instant(t.OccurredAt)
	modified := Instant(t.LastModified)
	created := Instant(t.CreatedAt)
	return transactionWire{
		ID:           t.ID,
		Amount:       json.Number(t.Amount.StringFixed(2)),
		Kind:         t.Kind,
		CategoryID:   t.CategoryID,
		Description:  t.Description,
		OccurredAt:   &occurred,
		HouseholdID:  t.HouseholdID,
		UserID:       t.UserID,
		SyncStatus:   t.SyncStatus,
		LastModified: &modified,
		CreatedAt:    &created,
	}, nil
}

func unmarshalTransaction(r transactionWire) (model.Transaction, error) {
	if r.ID == "" {
		return model.Transaction{}, errors.New("missing id")
	}
	if r.Amount == "" {
		return model.Transaction{}, fmt.Errorf("%q: missing amount", r.ID)
	}
	amount, err := decimal.NewFromString(r.Amount.String())
	if err != nil {
		return model.Transaction{}, fmt.Errorf("%q: parsing amount: %w", r.ID, err)
	}
	if r.OccurredAt == nil {
		return model.Transaction{}, fmt.Errorf("%q: missing occurredAt", r.ID)
	}
	t := model.Transaction{
		ID:          r.ID,
		Amount:      amount,
		Kind:        r.Kind,
		CategoryID:  r.CategoryID,
		Description: r.Description,
		OccurredAt:  r.OccurredAt.Time(),
		HouseholdID: r.HouseholdID,
		UserID:      r.UserID,
		SyncStatus:  r.SyncStatus,
	}
	if r.LastModified != nil {
		t.LastModified = r.LastModified.Time()
	}
	if r.CreatedAt != nil {
		t.CreatedAt = r.CreatedAt.Time()
	}
	return t, nil
}

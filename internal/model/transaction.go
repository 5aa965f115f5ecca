package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind tells income apart from spending. It applies to both transactions and categories.
type Kind string

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindExpense || k == KindIncome
}

// SyncStatus records whether a transaction has reached the remote store.
// It is advisory: nothing in this module moves a transaction between states.
type SyncStatus string

const (
	SyncSynced  SyncStatus = "synced"
	SyncPending SyncStatus = "pending"
	SyncFailed  SyncStatus = "failed"
)

// Valid reports whether s is one of the known sync states.
func (s SyncStatus) Valid() bool {
	switch s {
	case SyncSynced, SyncPending, SyncFailed:
		return true
	}
	return false
}

// Transaction is a single financial movement.
type Transaction struct {
	ID           string
	Amount       decimal.Decimal // always positive; Kind carries the sign
	Kind         Kind
	CategoryID   string // may dangle; see ledger.Service.CategoryFor
	Description  string
	OccurredAt   time.Time
	HouseholdID  string
	UserID       string
	SyncStatus   SyncStatus
	LastModified time.Time
	CreatedAt    time.Time
}

// Signed returns the amount as it affects the balance: negative for expenses.
func (t Transaction) Signed() decimal.Decimal {
	if t.Kind == KindExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

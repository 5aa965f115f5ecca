package model

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func validTxn() Transaction {
	return Transaction{
		ID:         "t1",
		Amount:     decimal.RequireFromString("42.50"),
		Kind:       KindExpense,
		CategoryID: "c1",
		OccurredAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		SyncStatus: SyncSynced,
	}
}

func fields(t *testing.T, err error) []string {
	t.Helper()
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs), "expected ValidationErrors, got %v", err)
	out := make([]string, len(verrs))
	for i, v := range verrs {
		out[i] = v.Field
	}
	return out
}

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"0.01", true},
		{"42.50", true},
		{"42.500", true},
		{"999999.99", true},
		{"1000000.00", false},
		{"0", false},
		{"-5", false},
		{"1.005", false},
	}
	for _, tt := range tests {
		err := ValidateAmount(decimal.RequireFromString(tt.in))
		if tt.ok {
			assert.NoError(t, err, "amount %s", tt.in)
		} else {
			assert.Error(t, err, "amount %s", tt.in)
		}
	}
}

func TestValidateTransaction_Valid(t *testing.T) {
	require.NoError(t, ValidateTransaction(validTxn(), now))
}

func TestValidateTransaction_CollectsAllViolations(t *testing.T) {
	txn := validTxn()
	txn.Amount = decimal.Zero
	txn.Kind = "transfer"
	txn.CategoryID = ""
	txn.Description = strings.Repeat("x", MaxDescriptionLen+1)

	err := ValidateTransaction(txn, now)
	require.Error(t, err)
	assert.ElementsMatch(t, []string{"amount", "kind", "categoryId", "description"}, fields(t, err))
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidateTransaction_Dates(t *testing.T) {
	future := validTxn()
	future.OccurredAt = now.Add(time.Hour)
	assert.Equal(t, []string{"occurredAt"}, fields(t, ValidateTransaction(future, now)))

	ancient := validTxn()
	ancient.OccurredAt = time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, []string{"occurredAt"}, fields(t, ValidateTransaction(ancient, now)))

	backdated := validTxn()
	backdated.OccurredAt = time.Date(1990, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.NoError(t, ValidateTransaction(backdated, now))
}

func TestValidateCategory(t *testing.T) {
	ok := Category{Name: "Food", Icon: "food", Color: "bg-orange-500", Kind: KindExpense}
	require.NoError(t, ValidateCategory(ok))

	blank := ok
	blank.Name = "   "
	assert.Equal(t, []string{"name"}, fields(t, ValidateCategory(blank)))

	long := ok
	long.Name = strings.Repeat("n", MaxCategoryNameLen+1)
	assert.Equal(t, []string{"name"}, fields(t, ValidateCategory(long)))

	bare := Category{}
	assert.ElementsMatch(t, []string{"name", "icon", "color", "kind"}, fields(t, ValidateCategory(bare)))
}

func TestSigned(t *testing.T) {
	txn := validTxn()
	assert.True(t, txn.Signed().Equal(decimal.RequireFromString("-42.50")))
	txn.Kind = KindIncome
	assert.True(t, txn.Signed().Equal(decimal.RequireFromString("42.50")))
}

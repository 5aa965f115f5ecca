package codec

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faheemho18/monefy-pwa-clone/internal/model"
)

func TestInstant_Wire(t *testing.T) {
	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	data, err := json.Marshal(Instant(at))
	require.NoError(t, err)
	assert.JSONEq(t, `{"$type":"instant","value":"2024-01-01T10:00:00Z"}`, string(data))
}

func TestInstant_RoundTripPrecisionAndZone(t *testing.T) {
	tz := time.FixedZone("UTC+5:30", 5*3600+1800)
	at := time.Date(2023, 7, 14, 23, 59, 59, 123456789, tz)

	data, err := json.Marshal(Instant(at))
	require.NoError(t, err)

	var got Instant
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, got.Time().Equal(at), "got %s want %s", got.Time(), at)
	assert.Equal(t, 123456789, got.Time().Nanosecond())
	assert.Equal(t, time.UTC, got.Time().Location())
}

func TestInstant_RejectsUntagged(t *testing.T) {
	tests := []string{
		`"2024-01-01T10:00:00Z"`,
		`1704103200000`,
		`{"$type":"date","value":"2024-01-01T10:00:00Z"}`,
		`{"__type":"Date","value":"2024-01-01T10:00:00Z"}`,
	}
	for _, in := range tests {
		var got Instant
		err := json.Unmarshal([]byte(in), &got)
		assert.ErrorIs(t, err, ErrUntaggedInstant, "input: %s", in)
	}

	var got Instant
	err := json.Unmarshal([]byte(`{"$type":"instant","value":"yesterday"}`), &got)
	assert.Error(t, err)
}

func TestInstant_OutOfRange(t *testing.T) {
	for _, year := range []int{-1, 10000} {
		_, err := json.Marshal(Instant(time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)))
		assert.ErrorIs(t, err, ErrInstantOutOfRange, "year %d", year)
	}

	data, err := json.Marshal(Instant(time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)))
	require.NoError(t, err)
	var got Instant
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, 9999, got.Time().Year())
}

func sampleTransaction() model.Transaction {
	return model.Transaction{
		ID:           "t1",
		Amount:       decimal.RequireFromString("42.5"),
		Kind:         model.KindExpense,
		CategoryID:   "food",
		Description:  "2024-01-01T10:00:00Z lunch",
		OccurredAt:   time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		SyncStatus:   model.SyncPending,
		LastModified: time.Date(2024, 1, 2, 8, 30, 0, 500, time.UTC),
		CreatedAt:    time.Date(2024, 1, 1, 10, 0, 1, 0, time.UTC),
	}
}

func TestTransactions_RoundTrip(t *testing.T) {
	in := []model.Transaction{sampleTransaction()}
	data, err := EncodeTransactions(in)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"amount":42.50`)
	// A date-looking description stays a string.
	assert.Contains(t, string(data), `"description":"2024-01-01T10:00:00Z lunch"`)

	out, err := DecodeTransactions(data)
	require.NoError(t, err)
	require.Len(t, out, 1)
	got := out[0]
	assert.True(t, got.Amount.Equal(in[0].Amount))
	assert.Equal(t, "42.50", got.Amount.StringFixed(2))
	assert.Equal(t, in[0].OccurredAt, got.OccurredAt)
	assert.Equal(t, in[0].LastModified, got.LastModified)
	assert.Equal(t, in[0].CreatedAt, got.CreatedAt)
	assert.Equal(t, in[0].Description, got.Description)
	assert.Equal(t, model.SyncPending, got.SyncStatus)
}

func TestEncodeTransactions_NilIsEmptyArray(t *testing.T) {
	data, err := EncodeTransactions(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestEncodeTransactions_Rejects(t *testing.T) {
	tests := []struct {
		name string
		edit func(*model.Transaction)
		want error
	}{
		{"three decimals", func(txn *model.Transaction) { txn.Amount = decimal.RequireFromString("1.005") }, ErrAmountPrecision},
		{"year past 9999", func(txn *model.Transaction) { txn.OccurredAt = time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC) }, ErrInstantOutOfRange},
		{"negative year", func(txn *model.Transaction) { txn.CreatedAt = time.Date(-1, 1, 1, 0, 0, 0, 0, time.UTC) }, ErrInstantOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := sampleTransaction()
			tt.edit(&txn)
			_, err := EncodeTransactions([]model.Transaction{txn})
			assert.ErrorIs(t, err, tt.want)
		})
	}

	txn := sampleTransaction()
	txn.Amount = decimal.RequireFromString("1.500")
	_, err := EncodeTransactions([]model.Transaction{txn})
	assert.NoError(t, err, "trailing zeros are not extra precision")
}

func TestTransactions_DuplicateID(t *testing.T) {
	txn := sampleTransaction()
	_, err := EncodeTransactions([]model.Transaction{txn, txn})
	assert.ErrorIs(t, err, ErrDuplicateID)

	one, err := EncodeTransactions([]model.Transaction{txn})
	require.NoError(t, err)
	var raw []json.RawMessage
	require.NoError(t, json.Unmarshal(one, &raw))
	doubled, err := json.Marshal([]json.RawMessage{raw[0], raw[0]})
	require.NoError(t, err)
	_, err = DecodeTransactions(doubled)
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestDecodeTransactions_Errors(t *testing.T) {
	tests := map[string]string{
		"not json":       `{broken`,
		"not array":      `{"id":"t1"}`,
		"untagged date":  `[{"id":"t1","amount":1,"kind":"expense","occurredAt":"2024-01-01T10:00:00Z"}]`,
		"missing date":   `[{"id":"t1","amount":1,"kind":"expense"}]`,
		"missing amount": `[{"id":"t1","kind":"expense","occurredAt":{"$type":"instant","value":"2024-01-01T10:00:00Z"}}]`,
		"missing id":     `[{"amount":1,"kind":"expense","occurredAt":{"$type":"instant","value":"2024-01-01T10:00:00Z"}}]`,
	}
	for name, in := range tests {
		_, err := DecodeTransactions([]byte(in))
		assert.Error(t, err, name)
	}
}

func TestCategories_RoundTrip(t *testing.T) {
	in := []model.Category{
		{ID: "food", Name: "Food", Icon: "food", Color: "bg-orange-500", Kind: model.KindExpense, IsDefault: true, Order: 0},
		{ID: "salary", Name: "Salary", Icon: "salary", Color: "bg-green-600", Kind: model.KindIncome, HouseholdID: "h1", Order: 1},
	}
	data, err := EncodeCategories(in)
	require.NoError(t, err)
	out, err := DecodeCategories(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = EncodeCategories([]model.Category{in[0], in[0]})
	assert.ErrorIs(t, err, ErrDuplicateID)
}

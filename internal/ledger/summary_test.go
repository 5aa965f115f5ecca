package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faheemho18/monefy-pwa-clone/internal/model"
)

func TestRange(t *testing.T) {
	tests := []struct {
		period     Period
		start, end time.Time
	}{
		{PeriodToday, time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 18, 23, 59, 59, 999999999, time.UTC)},
		{PeriodWeek, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 21, 23, 59, 59, 999999999, time.UTC)},
		{PeriodMonth, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 30, 23, 59, 59, 999999999, time.UTC)},
		{PeriodYear, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 12, 31, 23, 59, 59, 999999999, time.UTC)},
		{PeriodAll, time.Time{}, now},
	}
	for _, tt := range tests {
		start, end := Range(tt.period, now)
		assert.Equal(t, tt.start, start, "%s start", tt.period)
		assert.Equal(t, tt.end, end, "%s end", tt.period)
	}
}

func TestPreviousRange(t *testing.T) {
	start, end := previousRange(PeriodMonth, time.Date(2025, 3, 31, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 2, 28, 23, 59, 59, 999999999, time.UTC), end)

	start, _ = previousRange(PeriodAll, now)
	assert.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), start)

	start, end = previousRange(PeriodWeek, now)
	assert.Equal(t, time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 6, 14, 23, 59, 59, 999999999, time.UTC), end)
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("week")
	require.NoError(t, err)
	assert.Equal(t, PeriodWeek, p)
	assert.Equal(t, "This Week", p.DisplayName())

	_, err = ParsePeriod("decade")
	assert.Error(t, err)
}

func sampleLedger() []model.Transaction {
	return []model.Transaction{
		{ID: "1", Amount: dec("1000.00"), Kind: model.KindIncome, CategoryID: "salary", OccurredAt: day(2025, 6, 1)},
		{ID: "2", Amount: dec("42.50"), Kind: model.KindExpense, CategoryID: "food", OccurredAt: day(2025, 6, 17)},
		{ID: "3", Amount: dec("7.50"), Kind: model.KindExpense, CategoryID: "food", OccurredAt: day(2025, 6, 18)},
		{ID: "4", Amount: dec("100.00"), Kind: model.KindExpense, CategoryID: "gone", OccurredAt: day(2025, 6, 10)},
		{ID: "5", Amount: dec("500.00"), Kind: model.KindIncome, CategoryID: "salary", OccurredAt: day(2025, 5, 1)},
		{ID: "6", Amount: dec("250.00"), Kind: model.KindExpense, CategoryID: "food", OccurredAt: day(2025, 5, 20)},
	}
}

func TestPeriodBalance(t *testing.T) {
	txns := sampleLedger()

	month := PeriodBalance(txns, PeriodMonth, now)
	assert.Equal(t, "1000.00", month.Income.StringFixed(2))
	assert.Equal(t, "150.00", month.Expenses.StringFixed(2))
	assert.Equal(t, "850.00", month.Net.StringFixed(2))
	assert.Equal(t, 4, month.Count)

	today := PeriodBalance(txns, PeriodToday, now)
	assert.Equal(t, "7.50", today.Expenses.StringFixed(2))
	assert.Equal(t, 1, today.Count)

	all := PeriodBalance(txns, PeriodAll, now)
	assert.Equal(t, 6, all.Count)
	assert.Equal(t, "1100.00", all.Net.StringFixed(2))

	empty := PeriodBalance(nil, PeriodWeek, now)
	assert.True(t, empty.Net.IsZero())
	assert.Zero(t, empty.Count)
}

func TestBalanceTrend(t *testing.T) {
	tr := BalanceTrend(sampleLedger(), PeriodMonth, now)

	assert.Equal(t, "250.00", tr.Previous.Net.StringFixed(2))
	assert.Equal(t, "600.00", tr.Net.Amount.StringFixed(2))
	assert.Equal(t, int64(240), tr.Net.Percent)
	assert.Equal(t, Up, tr.Net.Direction)

	assert.Equal(t, int64(100), tr.Income.Percent)
	assert.Equal(t, int64(-40), tr.Expenses.Percent)
	assert.Equal(t, Down, tr.Expenses.Direction)
}

func TestBalanceTrend_NoPrevious(t *testing.T) {
	txns := []model.Transaction{
		{ID: "1", Amount: dec("20"), Kind: model.KindExpense, OccurredAt: day(2025, 6, 18)},
	}
	tr := BalanceTrend(txns, PeriodToday, now)
	assert.Equal(t, int64(-100), tr.Net.Percent)
	assert.Equal(t, Down, tr.Net.Direction)
	assert.Equal(t, int64(100), tr.Expenses.Percent)
	assert.Equal(t, int64(0), tr.Income.Percent)
	assert.Equal(t, Neutral, tr.Income.Direction)
}

func TestTotalsByCategory(t *testing.T) {
	cats := NewCategories([]model.Category{
		{ID: "food", Name: "Food", Kind: model.KindExpense},
		{ID: "salary", Name: "Salary", Kind: model.KindIncome},
	})
	start, end := Range(PeriodMonth, now)
	totals := TotalsByCategory(sampleLedger(), cats, model.KindExpense, start, end)

	require.Len(t, totals, 2)
	assert.Equal(t, UnknownCategoryName, totals[0].Category.Name)
	assert.Equal(t, "100.00", totals[0].Total.StringFixed(2))
	assert.Equal(t, "Food", totals[1].Category.Name)
	assert.Equal(t, "50.00", totals[1].Total.StringFixed(2))
	assert.Equal(t, 2, totals[1].Count)
}

package ledger

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/faheemho18/monefy-pwa-clone/internal/model"
)

// Period is a reporting window relative to "now".
type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
	PeriodAll   Period = "all"
)

// Periods lists every period in display order.
var Periods = []Period{PeriodToday, PeriodWeek, PeriodMonth, PeriodYear, PeriodAll}

// ParsePeriod parses a period name.
func ParsePeriod(s string) (Period, error) {
	p := Period(s)
	if slices.Contains(Periods, p) {
		return p, nil
	}
	return "", fmt.Errorf("unknown period %q (want today, week, month, year or all)", s)
}

// DisplayName returns a human label like "This Week".
func (p Period) DisplayName() string {
	switch p {
	case PeriodToday:
		return "Today"
	case PeriodWeek:
		return "This Week"
	case PeriodMonth:
		return "This Month"
	case PeriodYear:
		return "This Year"
	default:
		return "All Time"
	}
}

// Range returns the inclusive [start, end] window of p in now's location.
// Weeks start on Sunday. PeriodAll runs from the zero time to now.
func Range(p Period, now time.Time) (start, end time.Time) {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	switch p {
	case PeriodToday:
		return today, endOfDay(today)
	case PeriodWeek:
		ws := today.AddDate(0, 0, -int(today.Weekday()))
		return ws, endOfDay(ws.AddDate(0, 0, 6))
	case PeriodMonth:
		ms := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		return ms, endOfDay(ms.AddDate(0, 1, -1))
	case PeriodYear:
		ys := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, loc)
		return ys, endOfDay(time.Date(now.Year(), 12, 31, 0, 0, 0, 0, loc))
	default:
		return time.Time{}, now
	}
}

// previousRange is the window a trend compares against. PeriodAll compares
// with the previous calendar month.
func previousRange(p Period, now time.Time) (start, end time.Time) {
	cur, _ := Range(p, now)
	switch p {
	case PeriodToday:
		ps := cur.AddDate(0, 0, -1)
		return ps, endOfDay(ps)
	case PeriodWeek:
		ps := cur.AddDate(0, 0, -7)
		return ps, endOfDay(ps.AddDate(0, 0, 6))
	case PeriodMonth:
		ps := cur.AddDate(0, -1, 0)
		return ps, endOfDay(cur.AddDate(0, 0, -1))
	case PeriodYear:
		ps := cur.AddDate(-1, 0, 0)
		return ps, endOfDay(cur.AddDate(0, 0, -1))
	default:
		ms, _ := Range(PeriodMonth, now)
		return previousRange(PeriodMonth, ms)
	}
}

func endOfDay(day time.Time) time.Time {
	return day.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// Balance totals a set of transactions.
type Balance struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Net      decimal.Decimal
	Count    int
}

// BalanceBetween totals transactions that occurred within [start, end].
func BalanceBetween(txns []model.Transaction, start, end time.Time) Balance {
	var b Balance
	for _, t := range txns {
		if t.OccurredAt.Before(start) || t.OccurredAt.After(end) {
			continue
		}
		switch t.Kind {
		case model.KindIncome:
			b.Income = b.Income.Add(t.Amount)
		case model.KindExpense:
			b.Expenses = b.Expenses.Add(t.Amount)
		}
		b.Count++
	}
	b.Net = b.Income.Sub(b.Expenses)
	return b
}

// PeriodBalance totals the transactions of period p.
func PeriodBalance(txns []model.Transaction, p Period, now time.Time) Balance {
	start, end := Range(p, now)
	return BalanceBetween(txns, start, end)
}

// Direction of a change between two periods.
type Direction string

const (
	Up      Direction = "up"
	Down    Direction = "down"
	Neutral Direction = "neutral"
)

// Change compares one figure across two periods. Percent is rounded to a
// whole number.
type Change struct {
	Amount    decimal.Decimal
	Percent   int64
	Direction Direction
}

// Trend compares period p with the period before it.
type Trend struct {
	Current  Balance
	Previous Balance
	Net      Change
	Income   Change
	Expenses Change
}

// BalanceTrend compares the balance of p with the preceding period.
func BalanceTrend(txns []model.Transaction, p Period, now time.Time) Trend {
	cur := PeriodBalance(txns, p, now)
	ps, pe := previousRange(p, now)
	prev := BalanceBetween(txns, ps, pe)

	return Trend{
		Current:  cur,
		Previous: prev,
		Net:      change(cur.Net, prev.Net, true),
		Income:   change(cur.Income, prev.Income, false),
		Expenses: change(cur.Expenses, prev.Expenses, false),
	}
}

var hundred = decimal.NewFromInt(100)

// change computes the delta between cur and prev. With no previous value the
// percentage is +100 for growth, -100 for a signed figure that went negative,
// and 0 otherwise.
func change(cur, prev decimal.Decimal, signed bool) Change {
	c := Change{Amount: cur.Sub(prev), Direction: Neutral}
	switch c.Amount.Sign() {
	case 1:
		c.Direction = Up
	case -1:
		c.Direction = Down
	}

	switch {
	case !prev.IsZero():
		c.Percent = c.Amount.Div(prev.Abs()).Mul(hundred).Round(0).IntPart()
	case cur.IsPositive():
		c.Percent = 100
	case signed && cur.IsNegative():
		c.Percent = -100
	}
	return c
}

// CategoryTotal is the sum of one category's transactions.
type CategoryTotal struct {
	Category model.Category
	Total    decimal.Decimal
	Count    int
}

// TotalsByCategory sums transactions of kind within [start, end] per category,
// largest first.
func TotalsByCategory(txns []model.Transaction, cats *Categories, kind model.Kind, start, end time.Time) []CategoryTotal {
	idx := map[string]int{}
	var out []CategoryTotal
	for _, t := range txns {
		if t.Kind != kind || t.OccurredAt.Before(start) || t.OccurredAt.After(end) {
			continue
		}
		i, ok := idx[t.CategoryID]
		if !ok {
			i = len(out)
			idx[t.CategoryID] = i
			out = append(out, CategoryTotal{Category: cats.For(t)})
		}
		out[i].Total = out[i].Total.Add(t.Amount)
		out[i].Count++
	}
	slices.SortStableFunc(out, func(a, b CategoryTotal) int {
		return cmp.Or(b.Total.Cmp(a.Total), cmp.Compare(a.Category.Name, b.Category.Name))
	})
	return out
}

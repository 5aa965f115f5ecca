package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/faheemho18/monefy-pwa-clone/internal/model"
)

// ChaseParser reads Chase CSV downloads. The checking layout
//
//	Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #
//
// and the credit card layout
//
//	Transaction Date,Post Date,Description,Category,Type,Amount,Memo
//
// are told apart by their first header column.
type ChaseParser struct{}

const chaseDateFormat = "01/02/2006"

type chaseLayout struct {
	name    string
	first   string
	date    int
	desc    int
	amount  int
	details int // DEBIT/CREDIT column, -1 if the layout has none
}

var chaseLayouts = []chaseLayout{
	{name: "checking", first: "details", date: 1, desc: 2, amount: 3, details: 0},
	{name: "credit card", first: "transaction date", date: 0, desc: 2, amount: 5, details: -1},
}

func (p *ChaseParser) Format() string { return "chase" }

func (p *ChaseParser) Parse(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading chase CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	layout, err := chaseLayoutFor(records[0])
	if err != nil {
		return nil, err
	}

	var rows []Row
	for i, rec := range records[1:] {
		row, err := layout.row(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func chaseLayoutFor(header []string) (chaseLayout, error) {
	first := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header[0], "\ufeff")))
	for _, l := range chaseLayouts {
		if first != l.first {
			continue
		}
		if n := max(l.date, l.desc, l.amount, l.details) + 1; len(header) < n {
			return chaseLayout{}, fmt.Errorf("chase %s header has %d columns, want at least %d", l.name, len(header), n)
		}
		return l, nil
	}
	return chaseLayout{}, fmt.Errorf("unrecognised chase header starting with %q", header[0])
}

func (l chaseLayout) row(rec []string) (Row, error) {
	date, err := time.Parse(chaseDateFormat, strings.TrimSpace(rec[l.date]))
	if err != nil {
		return Row{}, fmt.Errorf("parsing date %q: %w", rec[l.date], err)
	}
	amount, kind, err := parseAmount(rec[l.amount])
	if err != nil {
		return Row{}, err
	}
	if l.details >= 0 && !amount.IsZero() {
		if want, ok := chaseDetailKinds[strings.ToUpper(strings.TrimSpace(rec[l.details]))]; ok && want != kind {
			return Row{}, fmt.Errorf("details %s disagree with amount sign (%s)", rec[l.details], kind)
		}
	}
	return Row{
		Date:        date,
		Description: strings.TrimSpace(rec[l.desc]),
		Amount:      amount,
		Kind:        kind,
	}, nil
}

// chaseDetailKinds maps the checking Details column to the kind its amount
// sign must agree with. Unlisted values are not checked.
var chaseDetailKinds = map[string]model.Kind{
	"DEBIT":  model.KindExpense,
	"CHECK":  model.KindExpense,
	"CREDIT": model.KindIncome,
	"DSLIP":  model.KindIncome,
}

package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"
)

// GenericParser reads a minimal "date,description,amount" CSV with ISO dates.
// Columns are found by header name, so extra columns are ignored.
type GenericParser struct{}

func (p *GenericParser) Format() string { return "generic" }

func (p *GenericParser) Parse(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading generic CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	cols := map[string]int{}
	for i, h := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, want := range []string{"date", "description", "amount"} {
		if _, ok := cols[want]; !ok {
			return nil, fmt.Errorf("missing %q column", want)
		}
	}

	var rows []Row
	for i, rec := range records[1:] {
		line := i + 2
		if len(rec) < len(records[0]) {
			return nil, fmt.Errorf("row %d: expected %d fields, got %d", line, len(records[0]), len(rec))
		}
		date, err := time.Parse(time.DateOnly, strings.TrimSpace(rec[cols["date"]]))
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing date %q: %w", line, rec[cols["date"]], err)
		}
		amount, kind, err := parseAmount(rec[cols["amount"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		rows = append(rows, Row{
			Date:        date,
			Description: strings.TrimSpace(rec[cols["description"]]),
			Amount:      amount,
			Kind:        kind,
		})
	}
	return rows, nil
}

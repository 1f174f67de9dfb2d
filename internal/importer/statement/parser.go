// Package statement reads bank statement CSV exports into dated, typed rows.
package statement

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/encoding"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/transaction"
)

var ErrUnknownFormat = errors.New("no statement profile matches the file header")

// Row is one movement from a statement. Amount is always positive; the sign in
// the file decides Type.
type Row struct {
	Line        int
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Type        transaction.Type
}

type Statement struct {
	Profile string
	Charset string
	Rows    []Row
}

type record struct {
	line   int
	fields []string
}

// Parse decodes r and reads it with the named profile, or with the first
// profile whose header appears in the file when name is empty. Rows before the
// header are ignored, as are rows without a parseable date or a non-zero amount
// (balances, footers, blank lines).
func Parse(r io.Reader, name string) (*Statement, error) {
	decoded, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(decoded)
	if err != nil {
		return nil, fmt.Errorf("read statement: %w", err)
	}

	candidates := Profiles

	if name != "" {
		p, ok := Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown profile %q", name)
		}

		candidates = []Profile{*p}
	}

	for i := range candidates {
		p := &candidates[i]

		records, err := readRecords(data, p.Comma)
		if err != nil {
			continue
		}

		headerIdx, cols, ok := findHeader(p, records)
		if !ok {
			continue
		}

		rows, err := parseRows(p, cols, records[headerIdx+1:])
		if err != nil {
			return nil, err
		}

		return &Statement{Profile: p.Name, Charset: decoded.Charset, Rows: rows}, nil
	}

	return nil, ErrUnknownFormat
}

func readRecords(data []byte, comma rune) ([]record, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records []record

	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}

		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		line, _ := reader.FieldPos(0)
		records = append(records, record{line: line, fields: fields})
	}
}

func findHeader(p *Profile, records []record) (int, columnSet, bool) {
	for i, rec := range records {
		if cols, ok := p.columns(rec.fields); ok {
			return i, cols, true
		}
	}

	return 0, columnSet{}, false
}

func parseRows(p *Profile, cols columnSet, records []record) ([]Row, error) {
	var rows []Row

	for _, rec := range records {
		date, ok := parseDate(p, cellValue(rec.fields, cols.date))
		if !ok {
			continue
		}

		amount, txType, ok := amountOf(p, cols, rec.fields)
		if !ok {
			continue
		}

		desc := cellValue(rec.fields, cols.desc)
		if desc == "" {
			return nil, fmt.Errorf("line %d: missing description", rec.line)
		}

		rows = append(rows, Row{
			Line:        rec.line,
			Date:        date,
			Description: desc,
			Amount:      amount,
			Type:        txType,
		})
	}

	return rows, nil
}

func parseDate(p *Profile, s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range p.DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func amountOf(p *Profile, cols columnSet, fields []string) (decimal.Decimal, transaction.Type, bool) {
	switch p.AmountMode {
	case amountSingle:
		d, ok := nonZero(p, cellValue(fields, cols.amount))
		if !ok {
			return decimal.Zero, "", false
		}

		if d.IsNegative() {
			return d.Neg(), transaction.TypeExpense, true
		}

		return d, transaction.TypeIncome, true
	case amountSplit:
		if d, ok := nonZero(p, cellValue(fields, cols.debit)); ok {
			return d.Abs(), transaction.TypeExpense, true
		}

		if d, ok := nonZero(p, cellValue(fields, cols.credit)); ok {
			return d.Abs(), transaction.TypeIncome, true
		}
	}

	return decimal.Zero, "", false
}

func nonZero(p *Profile, s string) (decimal.Decimal, bool) {
	if s == "" {
		return decimal.Zero, false
	}

	d, err := parseAmount(s, p.Mark)
	if err != nil || d.IsZero() {
		return decimal.Zero, false
	}

	return d, true
}

func cellValue(fields []string, idx int) string {
	if idx < 0 || idx >= len(fields) {
		return ""
	}

	return strings.TrimSpace(fields[idx])
}

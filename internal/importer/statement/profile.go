package statement

import "strings"

type amountMode int

const (
	// amountSingle is one signed column: negative values are expenses.
	amountSingle amountMode = iota
	// amountSplit is a debit column and a credit column, both unsigned.
	amountSplit
)

type decimalMark int

const (
	decimalPoint decimalMark = iota // 1,234.56
	decimalComma                    // 1.234,56
)

// Profile describes the layout of one family of CSV exports. Column names are
// matched case-insensitively and any alias will do.
type Profile struct {
	Name        string
	Comma       rune
	DateLayouts []string
	Mark        decimalMark
	AmountMode  amountMode

	DateCols   []string
	DescCols   []string
	AmountCols []string // amountSingle
	DebitCols  []string // amountSplit
	CreditCols []string // amountSplit
}

// columns resolves the profile's columns against a header row. ok is false
// when any required column is missing.
func (p *Profile) columns(header []string) (cols columnSet, ok bool) {
	index := make(map[string]int, len(header))

	for i, cell := range header {
		name := strings.ToLower(strings.TrimSpace(cell))
		if _, dup := index[name]; name != "" && !dup {
			index[name] = i
		}
	}

	find := func(aliases []string) int {
		for _, a := range aliases {
			if i, ok := index[strings.ToLower(a)]; ok {
				return i
			}
		}

		return -1
	}

	cols = columnSet{
		date:   find(p.DateCols),
		desc:   find(p.DescCols),
		amount: -1,
		debit:  -1,
		credit: -1,
	}

	switch p.AmountMode {
	case amountSingle:
		cols.amount = find(p.AmountCols)
		ok = cols.amount >= 0
	case amountSplit:
		cols.debit = find(p.DebitCols)
		cols.credit = find(p.CreditCols)
		ok = cols.debit >= 0 && cols.credit >= 0
	}

	return cols, ok && cols.date >= 0 && cols.desc >= 0
}

type columnSet struct {
	date, desc, amount, debit, credit int
}

var (
	dateAliases   = []string{"date", "data", "data mov.", "booking date", "transaction date"}
	descAliases   = []string{"description", "descrição", "descricao", "details", "memo"}
	amountAliases = []string{"amount", "montante", "movimento", "value", "valor"}
	debitAliases  = []string{"debit", "débito", "debito", "withdrawal"}
	creditAliases = []string{"credit", "crédito", "credito", "deposit"}
)

// Profiles is the detection order. Split layouts go first because their
// headers often carry an amount-like balance column too.
var Profiles = []Profile{
	{
		Name:        "split",
		Comma:       ';',
		DateLayouts: []string{"02-01-2006", "02/01/2006", "2006-01-02"},
		Mark:        decimalComma,
		AmountMode:  amountSplit,
		DateCols:    dateAliases,
		DescCols:    descAliases,
		DebitCols:   debitAliases,
		CreditCols:  creditAliases,
	},
	{
		Name:        "european",
		Comma:       ';',
		DateLayouts: []string{"02-01-2006", "02/01/2006", "02.01.2006"},
		Mark:        decimalComma,
		AmountMode:  amountSingle,
		DateCols:    dateAliases,
		DescCols:    descAliases,
		AmountCols:  amountAliases,
	},
	{
		Name:        "generic",
		Comma:       ',',
		DateLayouts: []string{"2006-01-02"},
		Mark:        decimalPoint,
		AmountMode:  amountSingle,
		DateCols:    dateAliases,
		DescCols:    descAliases,
		AmountCols:  amountAliases,
	},
}

// Lookup returns the named profile.
func Lookup(name string) (*Profile, bool) {
	for i := range Profiles {
		if strings.EqualFold(Profiles[i].Name, name) {
			return &Profiles[i], true
		}
	}

	return nil, false
}

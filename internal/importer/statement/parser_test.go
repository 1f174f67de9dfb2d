package statement_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/importer/statement"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/transaction"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

type wantRow struct {
	line   int
	date   time.Time
	desc   string
	amount string
	typ    transaction.Type
}

func assertRows(t *testing.T, want []wantRow, got []statement.Row) {
	t.Helper()

	require.Len(t, got, len(want))

	for i, w := range want {
		assert.Equal(t, w.line, got[i].Line, "row %d line", i)
		assert.Equal(t, w.date, got[i].Date, "row %d date", i)
		assert.Equal(t, w.desc, got[i].Description, "row %d description", i)
		assert.True(t, decimal.RequireFromString(w.amount).Equal(got[i].Amount), "row %d amount: %s", i, got[i].Amount)
		assert.Equal(t, w.typ, got[i].Type, "row %d type", i)
	}
}

func TestParse(t *testing.T) {
	type testCase struct {
		name        string
		input       string
		profile     string
		wantProfile string
		wantRows    []wantRow
	}

	tests := []testCase{
		{
			name: "Generic",
			input: `Date,Description,Amount
2024-03-01,Supermarket,-45.20
2024-03-02,"Salary, March",2500.00
2024-03-03,Refund,0
`,
			wantProfile: "generic",
			wantRows: []wantRow{
				{line: 2, date: date(2024, 3, 1), desc: "Supermarket", amount: "45.20", typ: transaction.TypeExpense},
				{line: 3, date: date(2024, 3, 2), desc: "Salary, March", amount: "2500", typ: transaction.TypeIncome},
			},
		},
		{
			name: "EuropeanWithPreamble",
			input: `Consultar saldos e movimentos à ordem - 31-01-2026;"=""0000"""
Nome cliente;JOHN DOE
Saldo disponível;1.000,00 EUR

Data mov.;Data-valor;Descrição;Montante;Saldo contabilístico após movimento
30-01-2026;30-01-2026;INSTITUTO GESTAO FINA;-588,74;48.825,46
09-01-2026;09-01-2026;TFI Wise;8.608,52;52.532,78
Saldo final;;;;52.532,78
`,
			wantProfile: "european",
			wantRows: []wantRow{
				{line: 6, date: date(2026, 1, 30), desc: "INSTITUTO GESTAO FINA", amount: "588.74", typ: transaction.TypeExpense},
				{line: 7, date: date(2026, 1, 9), desc: "TFI Wise", amount: "8608.52", typ: transaction.TypeIncome},
			},
		},
		{
			name: "SplitDebitCredit",
			input: `Data;Descrição;Débito;Crédito
05-02-2026;PINGO DOCE;12,30;
06-02-2026;DEVOLUCAO;;4,99
07-02-2026;SEM MOVIMENTO;;
`,
			wantProfile: "split",
			wantRows: []wantRow{
				{line: 2, date: date(2026, 2, 5), desc: "PINGO DOCE", amount: "12.30", typ: transaction.TypeExpense},
				{line: 3, date: date(2026, 2, 6), desc: "DEVOLUCAO", amount: "4.99", typ: transaction.TypeIncome},
			},
		},
		{
			name: "ExplicitProfile",
			input: `date,memo,value
2024-01-31,Rent,"-1,200.00"
`,
			profile:     "generic",
			wantProfile: "generic",
			wantRows: []wantRow{
				{line: 2, date: date(2024, 1, 31), desc: "Rent", amount: "1200", typ: transaction.TypeExpense},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := statement.Parse(strings.NewReader(tt.input), tt.profile)
			require.NoError(t, err)

			assert.Equal(t, tt.wantProfile, got.Profile)
			assertRows(t, tt.wantRows, got.Rows)
		})
	}
}

func TestParse_Windows1252(t *testing.T) {
	input := "Data;Descrição;Montante\n15-03-2024;Café Central;-3,50\n"

	encoded, err := charmap.Windows1252.NewEncoder().Bytes([]byte(input))
	require.NoError(t, err)

	got, err := statement.Parse(bytes.NewReader(encoded), "")
	require.NoError(t, err)

	assert.Equal(t, "european", got.Profile)
	assert.NotEqual(t, "UTF-8", got.Charset)
	assertRows(t, []wantRow{
		{line: 2, date: date(2024, 3, 15), desc: "Café Central", amount: "3.50", typ: transaction.TypeExpense},
	}, got.Rows)
}

func TestParse_Errors(t *testing.T) {
	type testCase struct {
		name    string
		input   string
		profile string
		wantErr string
	}

	tests := []testCase{
		{
			name:    "UnknownHeader",
			input:   "foo,bar\n1,2\n",
			wantErr: statement.ErrUnknownFormat.Error(),
		},
		{
			name:    "UnknownProfile",
			input:   "date,description,amount\n",
			profile: "ofx",
			wantErr: `unknown profile "ofx"`,
		},
		{
			name:    "ProfileDoesNotMatchFile",
			input:   "Data;Descrição;Montante\n15-03-2024;Café;-3,50\n",
			profile: "generic",
			wantErr: statement.ErrUnknownFormat.Error(),
		},
		{
			name:    "MissingDescription",
			input:   "date,description,amount\n2024-03-01,Coffee,-2.00\n2024-03-02,,-3.00\n",
			wantErr: "line 3: missing description",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := statement.Parse(strings.NewReader(tt.input), tt.profile)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

package statement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	type testCase struct {
		input   string
		mark    decimalMark
		want    string
		wantErr bool
	}

	tests := []testCase{
		{input: "1.234,56", mark: decimalComma, want: "1234.56"},
		{input: "-588,74", mark: decimalComma, want: "-588.74"},
		{input: "10,00 EUR", mark: decimalComma, want: "10"},
		{input: "1,234.56", mark: decimalPoint, want: "1234.56"},
		{input: "-45.2", mark: decimalPoint, want: "-45.2"},
		{input: "3.005", mark: decimalPoint, want: "3.01"},
		{input: "n/a", mark: decimalPoint, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseAmount(tt.input, tt.mark)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

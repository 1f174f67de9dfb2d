package statement

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount reads a signed amount written with the given decimal mark.
// Thousands separators, currency suffixes and spaces are ignored.
// "1.234,56" with decimalComma and "1,234.56" with decimalPoint are both 1234.56.
func parseAmount(s string, mark decimalMark) (decimal.Decimal, error) {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '-', r == '+', r == '.', r == ',':
			return r
		default:
			return -1
		}
	}, s)

	switch mark {
	case decimalComma:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	case decimalPoint:
		clean = strings.ReplaceAll(clean, ",", "")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, err
	}

	return d.Round(2), nil
}

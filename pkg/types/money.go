package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatBRL renders an amount the way pt-BR currency formatting does:
// "R$ 1.234,50". Amounts are rounded half away from zero to centavos.
func FormatBRL(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	fixed := amount.StringFixed(2)
	whole, cents, _ := strings.Cut(fixed, ".")

	var grouped strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(digit)
	}
	return sign + "R$ " + grouped.String() + "," + cents
}

// AverageOf divides total by count, returning zero for an empty set.
func AverageOf(total decimal.Decimal, count int) decimal.Decimal {
	if count <= 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count))).Round(2)
}

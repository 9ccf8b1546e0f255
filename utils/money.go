package utils

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatUSD formats an amount as a string like "$12,500.00".
// Uses comma as thousands separator and rounds to cents.
func FormatUSD(amount decimal.Decimal) string {
	cents := amount.Round(2).Shift(2).IntPart()
	neg := cents < 0
	if neg {
		cents = -cents
	}

	s := strconv.FormatInt(cents/100, 10)
	frac := cents % 100

	var b strings.Builder
	// Pre-allocate: digits + separators + sign + $ + cents
	b.Grow(len(s) + len(s)/3 + 5)
	if neg {
		b.WriteString("-$")
	} else {
		b.WriteString("$")
	}

	// Insert separators from the left.
	rem := len(s) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(s[:rem])
	for i := rem; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}

	b.WriteByte('.')
	if frac < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatInt(frac, 10))
	return b.String()
}

// Dollars converts a backend price into an exact decimal amount
func Dollars(price float64) decimal.Decimal {
	return decimal.NewFromFloat(price)
}

// LineTotal returns price times quantity, treating a missing price as zero
func LineTotal(price *float64, qty int) decimal.Decimal {
	if price == nil {
		return decimal.Zero
	}
	return Dollars(*price).Mul(decimal.NewFromInt(int64(qty)))
}

// Amount rounds a decimal total to cents for a JSON number field
func Amount(total decimal.Decimal) float64 {
	return total.Round(2).InexactFloat64()
}

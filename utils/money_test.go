package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{7, "$7.00"},
		{19.5, "$19.50"},
		{999.999, "$1,000.00"},
		{1234567.891, "$1,234,567.89"},
		{-42.1, "-$42.10"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatUSD(Dollars(tt.in)))
	}
}

func TestLineTotal(t *testing.T) {
	p := 2.5
	assert.True(t, decimal.NewFromInt(10).Equal(LineTotal(&p, 4)))
	assert.True(t, LineTotal(nil, 4).IsZero())

	cents := 0.1
	assert.Equal(t, "0.3", LineTotal(&cents, 3).String())
}

func TestAmount(t *testing.T) {
	total := Dollars(0.1).Add(Dollars(0.2))
	assert.Equal(t, 0.3, Amount(total))
	assert.Equal(t, "$0.30", FormatUSD(total))
	assert.Equal(t, 19.99, Amount(Dollars(19.985)))
}

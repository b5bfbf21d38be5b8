// Package core provides money parsing and summation helpers.
//
// Amounts are stored as float64 magnitudes, but every total is accumulated
// with shopspring/decimal so sums such as 0.1 + 0.2 come out exact.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user supplied amount to a non-negative magnitude.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Signs are rejected: the direction of money is carried by the transaction type.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,34")  -> 12.34, nil
//	ParseAmount("150000") -> 150000, nil
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	if strings.ContainsAny(s, "eE") {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.GreaterThan(maxDecimal) {
		return 0, ErrInvalidAmount
	}
	return d.InexactFloat64(), nil
}

// Sum accumulates amounts exactly. Totals stay in decimal until they are
// read, so sums beyond the float64 range never overflow mid-computation.
type Sum struct {
	total decimal.Decimal
}

func (s *Sum) Add(amount float64) {
	s.total = s.total.Add(toDecimal(amount))
}

// Float64 returns the total, clamped to the finite float64 range.
func (s Sum) Float64() float64 {
	return toFloat(s.total)
}

// Minus returns s - o, clamped like Float64.
func (s Sum) Minus(o Sum) float64 {
	return toFloat(s.total.Sub(o.total))
}

// Exceeds reports whether s is above the warning share of budget.
func (s Sum) Exceeds(budget Sum) bool {
	return overWarning(s.total, budget.total)
}

// Subtract returns a - b computed in decimal.
func Subtract(a, b float64) float64 {
	return toFloat(toDecimal(a).Sub(toDecimal(b)))
}

var overspendRatio = decimal.NewFromFloat(OverspendRatio)

// ExceedsWarning reports whether spent is above the warning share of budget.
// A zero or negative budget never warns.
func ExceedsWarning(spent, budget float64) bool {
	return overWarning(toDecimal(spent), toDecimal(budget))
}

func overWarning(spent, budget decimal.Decimal) bool {
	if !budget.IsPositive() {
		return false
	}
	return spent.GreaterThan(budget.Mul(overspendRatio))
}

var (
	maxDecimal = decimal.NewFromFloat(math.MaxFloat64)
	minDecimal = maxDecimal.Neg()
)

// toDecimal maps NaN to zero and the infinities to the float64 extremes;
// decimal.NewFromFloat panics on all three.
func toDecimal(f float64) decimal.Decimal {
	switch {
	case math.IsNaN(f):
		return decimal.Zero
	case math.IsInf(f, 1):
		return maxDecimal
	case math.IsInf(f, -1):
		return minDecimal
	}
	return decimal.NewFromFloat(f)
}

func toFloat(d decimal.Decimal) float64 {
	switch {
	case d.GreaterThan(maxDecimal):
		return math.MaxFloat64
	case d.LessThan(minDecimal):
		return -math.MaxFloat64
	}
	return d.InexactFloat64()
}

type currencyFormat struct {
	symbol  string
	group   string
	decimal string
	spaced  bool
}

var currencyFormats = map[string]currencyFormat{
	"IDR": {symbol: "Rp", group: ".", decimal: ",", spaced: true},
	"USD": {symbol: "$", group: ",", decimal: "."},
}

// FormatCurrency renders amount with two decimals in the conventions of
// code: "Rp 1.500.000,00" for IDR, "$1,500,000.00" for USD. Other codes
// fall back to "EUR 1,500,000.00". No conversion is applied.
func FormatCurrency(amount float64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	f, ok := currencyFormats[code]
	if !ok {
		f = currencyFormat{symbol: code, group: ",", decimal: ".", spaced: code != ""}
	}

	d := toDecimal(amount)
	intPart, frac, _ := strings.Cut(d.Abs().StringFixed(2), ".")

	var b strings.Builder
	if d.IsNegative() && !d.Round(2).IsZero() {
		b.WriteByte('-')
	}
	b.WriteString(f.symbol)
	if f.spaced {
		b.WriteByte(' ')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(f.group)
		}
		b.WriteRune(r)
	}
	b.WriteString(f.decimal)
	b.WriteString(frac)
	return b.String()
}

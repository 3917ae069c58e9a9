// Package money rounds and formats VND amounts for reports and exports.
// Calculation stays in float64; rounding happens only on the way out.
package money

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

func valid(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Round rounds half away from zero to the given number of decimal places.
func Round(v float64, places int32) float64 {
	if !valid(v) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// VND formats v as a whole-dong amount with Vietnamese digit grouping, e.g. 1.234.567.
func VND(v float64) string {
	if !valid(v) {
		return "0"
	}
	d := decimal.NewFromFloat(v).Round(0)
	digits := d.Abs().String()

	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte('.')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Percent formats v (already a percentage) with two decimals.
func Percent(v float64) string {
	if !valid(v) {
		return "0.00%"
	}
	return decimal.NewFromFloat(v).StringFixed(2) + "%"
}

// Share is amount as a percentage of base; empty when base is 0.
func Share(amount, base float64) string {
	if base == 0 {
		return ""
	}
	return Percent(amount / base * 100)
}

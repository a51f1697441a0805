package output

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Money formats a dollar amount with thousands separators.
func Money(v float64) string {
	return "$" + humanize.CommafWithDigits(v, 2)
}

// Tokens formats a token count with thousands separators.
func Tokens(n int64) string {
	return humanize.Comma(n)
}

// Ratio formats an optional per-unit cost, rendering "—" when the
// denominator was zero and the ratio is undefined.
func Ratio(v *float64) string {
	if v == nil {
		return "—"
	}
	return Money(*v)
}

// Signed formats a line delta with an explicit sign.
func Signed(n int) string {
	if n > 0 {
		return fmt.Sprintf("+%d", n)
	}
	return fmt.Sprintf("%d", n)
}

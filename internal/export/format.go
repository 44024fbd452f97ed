package export

import (
	"strings"

	"github.com/shopspring/decimal"
)

// formatMoney renders an amount with two decimals and thousands separators.
func formatMoney(v float64) string {
	return formatNumber(v, 2)
}

// formatNumber rounds v half away from zero to places decimals and groups
// the integer part in thousands.
func formatNumber(v float64, places int32) string {
	s := decimal.NewFromFloat(v).Round(places).StringFixed(places)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + frac
}

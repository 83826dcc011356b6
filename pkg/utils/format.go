package utils

import (
	"fmt"
	"math"
	"strings"
)

// FormatPrice formats an index level with thousands separators and two
// decimals, e.g. 24567.456 → "24,567.46". A nil price renders as "n/a".
func FormatPrice(price *float64) string {
	if price == nil {
		return "n/a"
	}
	p := *price
	negative := p < 0
	p = math.Abs(p)

	s := fmt.Sprintf("%.2f", p)
	intPart, decPart, _ := strings.Cut(s, ".")
	formatted := groupThousands(intPart) + "." + decPart
	if negative {
		return "-" + formatted
	}
	return formatted
}

// FormatRate formats an exchange rate. Rates below one keep six decimals
// so weak currencies (e.g. 1 KRW in GBP) do not collapse to zero.
func FormatRate(rate float64) string {
	if math.Abs(rate) < 1 {
		return fmt.Sprintf("%.6f", rate)
	}
	return fmt.Sprintf("%.4f", rate)
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

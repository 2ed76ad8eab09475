package explain

import (
	"fmt"
	"strings"
)

// formatCurrency renders a dollar amount with thousands separators, keeping
// the sign outside the dollar symbol: -1234.5 -> "-$1,234.50".
func formatCurrency(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	s := fmt.Sprintf("%.2f", amount)

	intPart, fracPart, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	return fmt.Sprintf("%s$%s.%s", sign, b.String(), fracPart)
}

// formatPercent renders a fraction as a percentage with one decimal place.
func formatPercent(value float64) string {
	return fmt.Sprintf("%.1f%%", value*100)
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}

package common

import (
	"fmt"
	"strings"
)

// FormatBalance formats a coin amount with thousand separators
func FormatBalance(balance int64) string {
	sign := ""
	str := fmt.Sprintf("%d", balance)
	if balance < 0 {
		sign, str = "-", str[1:]
	}

	n := len(str)
	if n <= 3 {
		return sign + str
	}

	var result strings.Builder
	result.WriteString(sign)
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}

	return result.String()
}

// FormatShortNotation abbreviates large values for chart axes (1.5k, 25k, 3.20M)
func FormatShortNotation(value int64) string {
	absValue := value
	sign := ""
	if value < 0 {
		absValue = -value
		sign = "-"
	}

	switch {
	case absValue >= 1_000_000_000:
		return fmt.Sprintf("%s%.2fB", sign, float64(absValue)/1_000_000_000)
	case absValue >= 1_000_000:
		return fmt.Sprintf("%s%.2fM", sign, float64(absValue)/1_000_000)
	case absValue >= 10_000:
		return fmt.Sprintf("%s%dk", sign, absValue/1_000)
	case absValue >= 1_000:
		return fmt.Sprintf("%s%.1fk", sign, float64(absValue)/1_000)
	default:
		return fmt.Sprintf("%s%d", sign, absValue)
	}
}

// FormatSignedBalance prefixes gains with a plus sign
func FormatSignedBalance(delta int64) string {
	if delta > 0 {
		return "+" + FormatBalance(delta)
	}
	return FormatBalance(delta)
}

// Mention renders a Discord user mention
func Mention(memberID int64) string {
	return fmt.Sprintf("<@%d>", memberID)
}

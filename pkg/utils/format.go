// Package utils provides common utility functions for marketbrief.
package utils

import (
	"fmt"
	"math"
	"strings"
)

// FormatPrice formats a price with thousands separators (1,234.56).
func FormatPrice(v float64) string {
	negative := v < 0
	v = math.Abs(v)

	intPart := int64(v)
	frac := v - float64(intPart)

	formatted := groupThousands(intPart)
	formatted += fmt.Sprintf("%.2f", frac)[1:] // skip the leading "0"

	if negative {
		return "-" + formatted
	}
	return formatted
}

// FormatUSD formats a dollar amount ($1,234.56).
func FormatUSD(v float64) string {
	if v < 0 {
		return "-$" + FormatPrice(-v)
	}
	return "$" + FormatPrice(v)
}

// FormatPct formats a percentage value with explicit sign (+1.23%).
func FormatPct(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}

// FormatChange formats an absolute change with explicit sign (+12.34).
func FormatChange(v float64) string {
	return fmt.Sprintf("%+.2f", v)
}

// ChangeMarker returns the colored marker used in report tables for a
// positive, negative, or flat change.
func ChangeMarker(v float64) string {
	switch {
	case v > 0:
		return "🟢"
	case v < 0:
		return "🔴"
	default:
		return "⚪"
	}
}

// Truncate shortens s to at most n runes, appending "..." when cut.
func Truncate(s string, n int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n]) + "..."
}

// groupThousands inserts commas every three digits.
func groupThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

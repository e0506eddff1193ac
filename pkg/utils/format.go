// Package utils provides shared utility functions.
package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Decimals returns the number of decimals needed to print multiples of
// step exactly, capped at 4.
func Decimals(step float64) int {
	if step <= 0 {
		return 2
	}
	for d := 0; d < 4; d++ {
		scaled := step * math.Pow(10, float64(d))
		if math.Abs(scaled-math.Round(scaled)) < 1e-9 {
			return d
		}
	}
	return 4
}

// FormatPrice formats a price level with the precision of the box size.
func FormatPrice(price, boxSize float64) string {
	return strconv.FormatFloat(price, 'f', Decimals(boxSize), 64)
}

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatDate formats t with layout, or "-" for the zero time.
func FormatDate(t time.Time, layout string) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(layout)
}

// Humanize turns a snake_case identifier into space separated words.
func Humanize(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}

// Pad pads s with spaces on the right to width runes.
func Pad(s string, width int) string {
	if n := len([]rune(s)); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

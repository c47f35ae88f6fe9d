package main

import (
	"math"
	"strconv"
	"strings"
)

// parseAmount turns a locale-formatted peso string into an integer amount.
// Bank exports write "$1.234.567", the booking system "$1.234", all whole-unit
// CLP, so every non-digit is stripped before parsing. A single leading minus is
// preserved. Empty or non-numeric input yields 0; the surrounding pipeline
// treats unparseable amounts as soft failures, never as fatal ones.
func parseAmount(raw string) int64 {
	raw = strings.TrimSpace(raw)
	neg := strings.HasPrefix(raw, "-")
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	n, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0
	}
	if neg {
		return -n
	}
	return n
}

// parseUSD parses a decimal dollar amount as exported on international card
// movements. Both "1,234.56" and "1234,56" shapes show up depending on the
// export; a comma acting as decimal separator is detected by position.
// Unparseable input yields 0.
func parseUSD(raw string) float64 {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "US$"))
	raw = strings.TrimPrefix(raw, "$")
	if raw == "" {
		return 0
	}
	lastComma := strings.LastIndex(raw, ",")
	lastDot := strings.LastIndex(raw, ".")
	if lastComma > lastDot {
		// Comma is the decimal separator; dots are grouping.
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.Replace(raw, ",", ".", 1)
	} else {
		raw = strings.ReplaceAll(raw, ",", "")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return f
}

// convertForeign converts a USD amount to pesos using the fixed configured
// rate, rounded to the nearest peso.
func convertForeign(usd float64, rate float64) int64 {
	return int64(math.Round(usd * rate))
}

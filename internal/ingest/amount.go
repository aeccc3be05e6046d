package ingest

import (
	"strings"

	"github.com/shopspring/decimal"
)

const currencySymbols = "$€£¥"

// parseAmount resolves a raw amount string to a signed decimal.
//
// Currency symbols and thousands separators are stripped before parsing.
// A parenthesized number and a number with a leading minus are both
// negative, accounting-style exports use the former.
func parseAmount(raw string) (decimal.Decimal, bool) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return decimal.Zero, false
	}

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}

	cleaned = strings.Map(func(r rune) rune {
		if strings.ContainsRune(currencySymbols+", ", r) {
			return -1
		}
		return r
	}, cleaned)

	if strings.HasPrefix(cleaned, "-") {
		negative = true
		cleaned = strings.TrimPrefix(cleaned, "-")
	} else {
		cleaned = strings.TrimPrefix(cleaned, "+")
	}

	// The sign prefix is already consumed, so a remaining sign means a
	// malformed amount like "--5" or "(-+5)"
	amount, err := decimal.NewFromString(cleaned)
	if err != nil || amount.IsNegative() {
		return decimal.Zero, false
	}

	if negative {
		amount = amount.Neg()
	}

	return amount, true
}

package ingest

import (
	"regexp"
	"strings"
)

// Noise tokens that banks prepend or append to the merchant name.
// These are removed as exact tokens before punctuation cleanup.
var merchantNoise = []*regexp.Regexp{
	regexp.MustCompile(`\bPOS\b`),
	regexp.MustCompile(`\bDEBIT CARD\b`),
	regexp.MustCompile(`\bDEBIT\b`),
	regexp.MustCompile(`\bCHECKCARD\b`),
	regexp.MustCompile(`\bCHECK CARD\b`),
	regexp.MustCompile(`\bPURCHASE\b`),
	regexp.MustCompile(`\bVISA\b`),
	regexp.MustCompile(`\bMASTERCARD\b`),
	regexp.MustCompile(`\bAMEX\b`),
	regexp.MustCompile(`\bDISCOVER\b`),
	regexp.MustCompile(`\bRECURRING\b`),
	regexp.MustCompile(`\bPENDING\b`),
	regexp.MustCompile(`SQ \*`),
	regexp.MustCompile(`TST\*`),
	regexp.MustCompile(`PY \*`),
}

// Everything that is not a letter, digit, ampersand or space counts as
// punctuation. The ampersand survives so "H&M" and "AT&T" keep their name.
var merchantPunctuation = regexp.MustCompile(`[^A-Z0-9& ]`)

var whitespace = regexp.MustCompile(`\s+`)

// NormalizeMerchant produces a stable grouping key from a free-text
// transaction description: uppercased, noise tokens stripped, punctuation
// removed and whitespace collapsed. Returns an empty string when nothing
// meaningful remains.
func NormalizeMerchant(description string) string {
	normalized := strings.ToUpper(strings.TrimSpace(description))

	for _, noise := range merchantNoise {
		normalized = noise.ReplaceAllString(normalized, " ")
	}

	normalized = merchantPunctuation.ReplaceAllString(normalized, " ")
	normalized = whitespace.ReplaceAllString(normalized, " ")

	return strings.TrimSpace(normalized)
}

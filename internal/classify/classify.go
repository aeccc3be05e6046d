// Package classify assigns a transaction kind, spend inclusion flag and
// category to parsed statement rows.
//
// User-authored merchant rules take precedence over the built-in keyword
// heuristics. Both are evaluated as ordered first-match-wins chains, the
// evaluation order is part of the contract. The package never returns an
// error: malformed rule patterns are treated as non-matching so a single
// bad rule cannot halt an import.
package classify

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pocketledger/backend/internal/ingest"
	"github.com/ryanuber/go-glob"
)

// Kind is the semantic type of a transaction.
type Kind string

const (
	KindPurchase       Kind = "purchase"
	KindIncome         Kind = "income"
	KindTransfer       Kind = "transfer"
	KindCCPayment      Kind = "cc_payment"
	KindRefund         Kind = "refund"
	KindCashWithdrawal Kind = "cash_withdrawal"
	KindFeeInterest    Kind = "fee_interest"
	KindUnknown        Kind = "unknown"
	KindDuplicate      Kind = "duplicate"
)

// Kinds lists every valid Kind.
var Kinds = []Kind{
	KindPurchase, KindIncome, KindTransfer, KindCCPayment, KindRefund,
	KindCashWithdrawal, KindFeeInterest, KindUnknown, KindDuplicate,
}

// Valid reports whether k is part of the Kind enumeration.
func (k Kind) Valid() bool {
	for _, kind := range Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// MatchField selects which row field a rule is tested against.
type MatchField string

const (
	MatchFieldMerchantNorm MatchField = "merchant_norm"
	MatchFieldDescription  MatchField = "description"
)

// MatchType selects how a rule's pattern is tested.
type MatchType string

const (
	MatchTypeContains MatchType = "contains"
	MatchTypeEquals   MatchType = "equals"
	MatchTypeRegex    MatchType = "regex"
	MatchTypeGlob     MatchType = "glob"
)

// Rule is a user-authored classification override. Rules are value objects
// for the duration of one classification pass, persistence is the caller's
// concern.
type Rule struct {
	MatchField    MatchField
	MatchType     MatchType
	MatchValue    string
	ActionExclude bool
	SetKind       Kind
	SetCategory   string
	Priority      uint
	Enabled       bool
	Name          string
}

// Result is the per-row judgment.
type Result struct {
	Kind            Kind   `json:"kind"`
	KindReason      string `json:"kindReason,omitempty"`
	IncludedInSpend bool   `json:"includedInSpend"`
	Category        string `json:"category,omitempty"`
}

// Transaction classifies a single row.
//
// Decision order: parse errors first, then user rules sorted ascending by
// priority, then the built-in heuristics. The first match wins and
// short-circuits everything below it.
func Transaction(row ingest.ParsedRow, rules []Rule) Result {
	if row.ParseStatus == ingest.ParseStatusError {
		return Result{
			Kind:       KindUnknown,
			KindReason: "Parse error",
		}
	}

	if result, ok := applyRules(row, rules); ok {
		return result
	}

	return applyHeuristics(row)
}

// Batch classifies every row, preserving order.
func Batch(rows []ingest.ParsedRow, rules []Rule) []Result {
	results := make([]Result, len(rows))
	for i, row := range rows {
		results[i] = Transaction(row, rules)
	}

	return results
}

// applyRules evaluates the user rules in priority order and returns the
// result of the first matching rule. The rule list is re-sorted defensively,
// callers do not have to pass a sorted list.
func applyRules(row ingest.ParsedRow, rules []Rule) (Result, bool) {
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})

	for _, rule := range sorted {
		if !rule.Enabled {
			continue
		}

		value := row.MerchantNorm
		if rule.MatchField == MatchFieldDescription {
			value = row.DescriptionRaw
		}
		if value == "" {
			continue
		}

		if !rule.matches(value) {
			continue
		}

		// Rules only ever set the kind and category. Inclusion stays at
		// the pipeline default of false, only a user override can pull a
		// rule-classified row back into spend.
		result := Result{
			Kind:       KindUnknown,
			KindReason: rule.reason(),
		}
		if rule.SetKind != "" {
			result.Kind = rule.SetKind
		}
		if rule.SetCategory != "" {
			result.Category = rule.SetCategory
		}

		return result, true
	}

	return Result{}, false
}

// matches tests the rule pattern against the field value. Malformed regex
// patterns fail closed.
func (r Rule) matches(value string) bool {
	switch r.MatchType {
	case MatchTypeContains:
		return strings.Contains(strings.ToLower(value), strings.ToLower(r.MatchValue))
	case MatchTypeEquals:
		return strings.EqualFold(value, r.MatchValue)
	case MatchTypeRegex:
		return matchRegex(r.MatchValue, value)
	case MatchTypeGlob:
		return glob.Glob(strings.ToUpper(r.MatchValue), strings.ToUpper(value))
	}

	return false
}

func (r Rule) reason() string {
	if r.Name != "" {
		return "Rule: " + r.Name
	}

	return "Rule: " + r.MatchValue
}

// applyHeuristics walks the built-in keyword chains in their fixed order.
// Refund and income require a positive amount, a negative amount falls
// through to purchase.
func applyHeuristics(row ingest.ParsedRow) Result {
	positive := row.Amount != nil && row.Amount.IsPositive()
	negative := row.Amount != nil && row.Amount.IsNegative()

	switch {
	case matchesRow(row, transferPatterns):
		return excluded(KindTransfer, "Transfer keyword")
	case matchesRow(row, ccPaymentPatterns):
		return excluded(KindCCPayment, "Credit card payment keyword")
	case matchesRow(row, cashWithdrawalPatterns):
		return excluded(KindCashWithdrawal, "Cash withdrawal keyword")
	case positive && matchesRow(row, refundPatterns):
		return excluded(KindRefund, "Refund keyword")
	case matchesRow(row, feeInterestPatterns):
		return excluded(KindFeeInterest, "Fee or interest keyword")
	case positive && matchesRow(row, incomePatterns):
		return excluded(KindIncome, "Income keyword")
	case negative:
		return Result{
			Kind:            KindPurchase,
			KindReason:      "Negative amount",
			IncludedInSpend: true,
			Category:        categorize(row),
		}
	}

	return Result{
		Kind:       KindUnknown,
		KindReason: "Unable to classify",
	}
}

func excluded(kind Kind, reason string) Result {
	return Result{
		Kind:       kind,
		KindReason: reason,
	}
}

// matchesRow reports whether any pattern matches the normalized merchant
// or the raw description. Either field matching triggers the rule.
func matchesRow(row ingest.ParsedRow, patterns []string) bool {
	return matchAny(patterns, row.MerchantNorm) || matchAny(patterns, row.DescriptionRaw)
}

func matchAny(patterns []string, text string) bool {
	if text == "" {
		return false
	}

	for _, pattern := range patterns {
		if matchPattern(pattern, text) {
			return true
		}
	}

	return false
}

// matchPattern is the shared matching primitive for the keyword and
// category tables. A pattern is a case-insensitive substring unless it
// contains the literal sequence ".*", then it is treated as a
// case-insensitive regular expression. This lets a handful of
// bank-qualified patterns act as mini-regexes while the bulk stay simple.
func matchPattern(pattern, text string) bool {
	if strings.Contains(pattern, ".*") {
		return matchRegex(pattern, text)
	}

	return strings.Contains(strings.ToUpper(text), strings.ToUpper(pattern))
}

// matchRegex compiles and runs a case-insensitive regular expression,
// degrading to "no match" on any compile error. Every user-supplied or
// table pattern goes through here so a bad pattern never stops an import.
func matchRegex(pattern, text string) bool {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return false
	}

	return re.MatchString(text)
}

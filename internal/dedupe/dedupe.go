// Package dedupe detects duplicate statement rows by exact fingerprint
// matching.
//
// The fingerprint is derived from user, date, cent-rounded amount and
// normalized merchant. Two rows collide iff all four components are
// identical, trading recall for zero false positives.
package dedupe

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pocketledger/backend/internal/ingest"
	"github.com/shopspring/decimal"
)

// nullToken encodes an absent component. Unset fields still participate in
// fingerprinting, so two all-null rows on the same date for the same user
// collide. This is intentional.
const nullToken = "null"

// Result is the dedupe judgment for one row.
type Result struct {
	IsDuplicate bool       `json:"isDuplicate"`
	DuplicateOf *uuid.UUID `json:"duplicateOf"` // ID of the stored transaction this row duplicates, if known
}

// Existing is the fingerprint-relevant view of an already-stored
// transaction.
type Existing struct {
	ID           uuid.UUID
	Date         string // ISO date (YYYY-MM-DD), empty when unknown
	Amount       decimal.Decimal
	MerchantNorm string
}

// Fingerprint returns the deterministic duplicate-detection key for a row.
func Fingerprint(userID uuid.UUID, row ingest.ParsedRow) string {
	return join(userID, row.DateChosen, amountComponent(row.Amount), row.MerchantNorm)
}

// InBatch flags duplicates within one batch, keyed by row index.
//
// The first occurrence of a fingerprint is kept as non-duplicate, every
// later occurrence is flagged with DuplicateOf left nil: the anchor row has
// no storage ID yet, resolving the reference is the caller's concern once
// rows are persisted.
func InBatch(userID uuid.UUID, rows []ingest.ParsedRow) map[int]Result {
	seen := make(map[string]bool, len(rows))
	results := make(map[int]Result, len(rows))

	for _, row := range rows {
		fingerprint := Fingerprint(userID, row)
		if seen[fingerprint] {
			results[row.RowIndex] = Result{IsDuplicate: true}
			continue
		}

		seen[fingerprint] = true
		results[row.RowIndex] = Result{}
	}

	return results
}

// AgainstExisting flags rows that duplicate an already-stored transaction,
// keyed by row index. Unlike the within-batch pass this resolves
// DuplicateOf to the stored transaction's ID.
//
// The existing set is expected to come from a single batched fetch and is
// treated as static for the duration of the call.
func AgainstExisting(userID uuid.UUID, rows []ingest.ParsedRow, existing []Existing) map[int]Result {
	index := make(map[string]uuid.UUID, len(existing))
	for _, transaction := range existing {
		fingerprint := join(userID, transaction.Date, transaction.Amount.StringFixed(2), transaction.MerchantNorm)

		// First stored transaction wins for colliding fingerprints
		if _, ok := index[fingerprint]; !ok {
			index[fingerprint] = transaction.ID
		}
	}

	results := make(map[int]Result, len(rows))
	for _, row := range rows {
		if id, ok := index[Fingerprint(userID, row)]; ok {
			duplicateOf := id
			results[row.RowIndex] = Result{IsDuplicate: true, DuplicateOf: &duplicateOf}
			continue
		}

		results[row.RowIndex] = Result{}
	}

	return results
}

func amountComponent(amount *decimal.Decimal) string {
	if amount == nil {
		return nullToken
	}

	return amount.StringFixed(2)
}

func join(userID uuid.UUID, date, amount, merchant string) string {
	if date == "" {
		date = nullToken
	}
	if merchant == "" {
		merchant = nullToken
	}

	return strings.Join([]string{userID.String(), date, amount, merchant}, "|")
}

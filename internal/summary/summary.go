// Package summary aggregates row-level import outcomes into per-batch
// totals.
//
// The summary is always recomputed from scratch over the full row set and
// replaces any previously cached aggregate, it is never patched
// incrementally. Batches are bounded by a single CSV upload, so the O(rows)
// recompute per mutation is acceptable and the aggregate can never drift
// from row-level truth.
package summary

import (
	"github.com/pocketledger/backend/internal/classify"
	"github.com/shopspring/decimal"
)

// Currency is fixed for now, the field exists for forward compatibility.
const Currency = "USD"

// Row is the effective (override-applied) view of one import row. Kind and
// IncludedInSpend must be the effective values, not the raw system
// classification.
type Row struct {
	DateChosen      string
	Amount          *decimal.Decimal
	ParseError      bool
	Kind            classify.Kind
	IncludedInSpend bool
	IsDuplicate     bool
}

// Summary holds the aggregate counts and totals for one batch.
type Summary struct {
	RowsTotal       int `json:"rowsTotal"`
	RowsIncluded    int `json:"rowsIncluded"`
	RowsExcluded    int `json:"rowsExcluded"`
	RowsDuplicates  int `json:"rowsDuplicates"`
	RowsNeedsReview int `json:"rowsNeedsReview"`

	TotalIncludedSpend  decimal.Decimal `json:"totalIncludedSpend"`
	TotalExcludedAmount decimal.Decimal `json:"totalExcludedAmount"`

	DateMin  string `json:"dateMin,omitempty"`
	DateMax  string `json:"dateMax,omitempty"`
	Currency string `json:"currency"`
}

// Compute reduces a row set to its batch summary.
//
// Bucketing is mutually exclusive and evaluated in order: duplicate, then
// needs-review (parse error or effective kind unknown), then included, then
// excluded-other. RowsExcluded is a superset counter that also counts
// duplicates and needs-review rows, so RowsIncluded+RowsExcluded always
// equals RowsTotal.
func Compute(rows []Row) Summary {
	s := Summary{
		TotalIncludedSpend:  decimal.Zero,
		TotalExcludedAmount: decimal.Zero,
		Currency:            Currency,
	}

	for _, row := range rows {
		s.RowsTotal++

		// ISO dates compare correctly as strings
		if row.DateChosen != "" {
			if s.DateMin == "" || row.DateChosen < s.DateMin {
				s.DateMin = row.DateChosen
			}
			if s.DateMax == "" || row.DateChosen > s.DateMax {
				s.DateMax = row.DateChosen
			}
		}

		var magnitude decimal.Decimal
		if row.Amount != nil {
			magnitude = row.Amount.Abs()
		}

		switch {
		case row.IsDuplicate || row.Kind == classify.KindDuplicate:
			s.RowsDuplicates++
			s.RowsExcluded++
			s.TotalExcludedAmount = s.TotalExcludedAmount.Add(magnitude)
		case row.ParseError || row.Kind == classify.KindUnknown:
			s.RowsNeedsReview++
			s.RowsExcluded++
			s.TotalExcludedAmount = s.TotalExcludedAmount.Add(magnitude)
		case row.IncludedInSpend:
			s.RowsIncluded++
			s.TotalIncludedSpend = s.TotalIncludedSpend.Add(magnitude)
		default:
			s.RowsExcluded++
			s.TotalExcludedAmount = s.TotalExcludedAmount.Add(magnitude)
		}
	}

	// Round once at the end, not per row, to avoid compounding error
	s.TotalIncludedSpend = s.TotalIncludedSpend.Round(2)
	s.TotalExcludedAmount = s.TotalExcludedAmount.Round(2)

	return s
}

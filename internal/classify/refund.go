package classify

import (
	"github.com/pocketledger/backend/internal/ingest"
	"github.com/shopspring/decimal"
)

// refundPairTolerance is the maximum difference between the magnitudes of
// a purchase and its candidate refund.
var refundPairTolerance = decimal.NewFromFloat(0.01)

// RefundPair is a suggested purchase/refund match within one batch.
// It is surfaced to the caller as a suggestion and never auto-applied.
type RefundPair struct {
	PurchaseRowIndex int             `json:"purchaseRowIndex"`
	RefundRowIndex   int             `json:"refundRowIndex"`
	Merchant         string          `json:"merchant"`
	Amount           decimal.Decimal `json:"amount"` // magnitude of the purchase side
}

// RefundPairs finds unmatched row pairs with an identical normalized
// merchant, equal-magnitude amounts and opposite signs.
//
// Pairing is a first-fit scan: the earlier-indexed candidate pairs with the
// first later-indexed complement found. Rows are marked as used so no row
// appears in two pairs. This is deliberately not optimal matching, it only
// has to be deterministic and cheap.
func RefundPairs(rows []ingest.ParsedRow) []RefundPair {
	used := make(map[int]bool, len(rows))
	pairs := []RefundPair{}

	for i, row := range rows {
		if used[i] || !pairable(row) {
			continue
		}

		for j := i + 1; j < len(rows); j++ {
			candidate := rows[j]
			if used[j] || !pairable(candidate) {
				continue
			}
			if candidate.MerchantNorm != row.MerchantNorm {
				continue
			}
			if row.Amount.Sign() == candidate.Amount.Sign() {
				continue
			}

			diff := row.Amount.Abs().Sub(candidate.Amount.Abs()).Abs()
			if diff.GreaterThan(refundPairTolerance) {
				continue
			}

			purchase, refund := i, j
			amount := row.Amount.Abs()
			if row.Amount.IsPositive() {
				purchase, refund = j, i
				amount = candidate.Amount.Abs()
			}

			pairs = append(pairs, RefundPair{
				PurchaseRowIndex: purchase,
				RefundRowIndex:   refund,
				Merchant:         row.MerchantNorm,
				Amount:           amount,
			})
			used[i] = true
			used[j] = true
			break
		}
	}

	return pairs
}

func pairable(row ingest.ParsedRow) bool {
	return row.MerchantNorm != "" && row.Amount != nil && !row.Amount.IsZero()
}

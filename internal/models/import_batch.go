package models

import (
	"github.com/google/uuid"
	"github.com/pocketledger/backend/internal/summary"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BatchStatus is the lifecycle state of an import batch.
//
// swagger:enum BatchStatus
type BatchStatus string

const (
	BatchStatusPending   BatchStatus = "pending"
	BatchStatusCommitted BatchStatus = "committed"
)

// ImportBatch represents one uploaded CSV statement and its cached summary.
//
// The summary columns are a cache of summary.Compute over the batch rows.
// They are overwritten wholesale after every row mutation and must never be
// patched incrementally.
type ImportBatch struct {
	DefaultModel
	UserID   uuid.UUID   `json:"userId" gorm:"index"`
	Filename string      `json:"filename" example:"statement-january.csv"`
	Status   BatchStatus `json:"status" example:"pending"`

	RowsTotal       int `json:"rowsTotal"`
	RowsIncluded    int `json:"rowsIncluded"`
	RowsExcluded    int `json:"rowsExcluded"`
	RowsDuplicates  int `json:"rowsDuplicates"`
	RowsNeedsReview int `json:"rowsNeedsReview"`

	TotalIncludedSpend  decimal.Decimal `json:"totalIncludedSpend" gorm:"type:DECIMAL(20,8)"`
	TotalExcludedAmount decimal.Decimal `json:"totalExcludedAmount" gorm:"type:DECIMAL(20,8)"`

	DateMin  string `json:"dateMin,omitempty" example:"2026-01-02"`
	DateMax  string `json:"dateMax,omitempty" example:"2026-01-31"`
	Currency string `json:"currency" example:"USD"`
}

func (b *ImportBatch) BeforeSave(_ *gorm.DB) error {
	if b.Status == "" {
		b.Status = BatchStatusPending
	}
	if b.Status != BatchStatusPending && b.Status != BatchStatusCommitted {
		return ErrBatchStatusInvalid
	}
	if b.Currency == "" {
		b.Currency = summary.Currency
	}

	return nil
}

// ApplySummary replaces the cached summary columns with a freshly computed
// summary.
func (b *ImportBatch) ApplySummary(s summary.Summary) {
	b.RowsTotal = s.RowsTotal
	b.RowsIncluded = s.RowsIncluded
	b.RowsExcluded = s.RowsExcluded
	b.RowsDuplicates = s.RowsDuplicates
	b.RowsNeedsReview = s.RowsNeedsReview
	b.TotalIncludedSpend = s.TotalIncludedSpend
	b.TotalExcludedAmount = s.TotalExcludedAmount
	b.DateMin = s.DateMin
	b.DateMax = s.DateMax
	b.Currency = s.Currency
}

// Summary returns the cached summary columns as a summary.Summary.
func (b ImportBatch) Summary() summary.Summary {
	return summary.Summary{
		RowsTotal:           b.RowsTotal,
		RowsIncluded:        b.RowsIncluded,
		RowsExcluded:        b.RowsExcluded,
		RowsDuplicates:      b.RowsDuplicates,
		RowsNeedsReview:     b.RowsNeedsReview,
		TotalIncludedSpend:  b.TotalIncludedSpend,
		TotalExcludedAmount: b.TotalExcludedAmount,
		DateMin:             b.DateMin,
		DateMax:             b.DateMax,
		Currency:            b.Currency,
	}
}

// RecomputeSummary loads all rows of the batch, computes the summary over
// their effective values and persists the refreshed cache columns.
func (b *ImportBatch) RecomputeSummary(db *gorm.DB) error {
	var rows []ImportRow
	err := db.Where(&ImportRow{BatchID: b.ID}).Order("row_index ASC").Find(&rows).Error
	if err != nil {
		return err
	}

	summaryRows := make([]summary.Row, 0, len(rows))
	for _, row := range rows {
		summaryRows = append(summaryRows, row.SummaryRow())
	}

	b.ApplySummary(summary.Compute(summaryRows))

	return db.Model(b).Select(
		"RowsTotal", "RowsIncluded", "RowsExcluded", "RowsDuplicates",
		"RowsNeedsReview", "TotalIncludedSpend", "TotalExcludedAmount",
		"DateMin", "DateMax", "Currency",
	).Updates(b).Error
}

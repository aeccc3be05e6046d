package models

import (
	"github.com/google/uuid"
	"github.com/pocketledger/backend/internal/classify"
	"github.com/pocketledger/backend/internal/dedupe"
	"github.com/pocketledger/backend/internal/ingest"
	"github.com/pocketledger/backend/internal/summary"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ImportRow is one parsed statement row together with its system
// classification, dedupe result and any user override.
//
// The system classification fields are only ever written by the pipeline,
// a user override never modifies them. The effective view merges both.
type ImportRow struct {
	DefaultModel
	BatchID uuid.UUID   `json:"batchId" gorm:"uniqueIndex:import_rows_batch_row"`
	Batch   ImportBatch `json:"-"`

	// RowIndex is the position in the source file. It is assigned at
	// ingestion time, is unique within the batch and never changes.
	RowIndex int `json:"rowIndex" gorm:"uniqueIndex:import_rows_batch_row"`

	Raw         map[string]string  `json:"raw" gorm:"serializer:json"`
	ParseStatus ingest.ParseStatus `json:"parseStatus" example:"ok"`
	ParseError  string             `json:"parseError,omitempty"`

	DateRaw        string              `json:"dateRaw,omitempty" example:"01/05/2026"`
	DateChosen     string              `json:"dateChosen,omitempty" example:"2026-01-05"`
	AmountRaw      string              `json:"amountRaw,omitempty" example:"-42.10"`
	Amount         decimal.NullDecimal `json:"amountSigned" gorm:"type:DECIMAL(20,8)" swaggertype:"number"`
	DescriptionRaw string              `json:"descriptionRaw,omitempty"`
	MerchantRaw    string              `json:"merchantRaw,omitempty"`
	MerchantNorm   string              `json:"merchantNorm,omitempty" example:"STARBUCKS 123"`

	Kind            classify.Kind `json:"kind" example:"purchase"`
	KindReason      string        `json:"kindReason,omitempty" example:"Negative amount"`
	IncludedInSpend bool          `json:"includedInSpend"`
	Category        string        `json:"category,omitempty" example:"Coffee & Drinks"`

	IsDuplicate bool       `json:"isDuplicate"`
	DuplicateOf *uuid.UUID `json:"duplicateOf"`

	OverrideKind     *classify.Kind `json:"overrideKind,omitempty"`
	OverrideIncluded *bool          `json:"overrideIncluded,omitempty"`
	OverrideCategory *string        `json:"overrideCategory,omitempty"`
}

func (r *ImportRow) BeforeSave(_ *gorm.DB) error {
	if r.BatchID == uuid.Nil {
		return ErrImportRowBatchRequired
	}
	if r.ParseStatus != ingest.ParseStatusOK && r.ParseStatus != ingest.ParseStatusError {
		return ErrParseStatusInvalid
	}
	if !r.Kind.Valid() {
		return ErrKindInvalid
	}
	if r.OverrideKind != nil && !r.OverrideKind.Valid() {
		return ErrKindInvalid
	}

	return nil
}

// NewImportRow combines the outputs of the pipeline stages for one row.
func NewImportRow(batchID uuid.UUID, row ingest.ParsedRow, result classify.Result, duplicate dedupe.Result) ImportRow {
	r := ImportRow{
		BatchID:         batchID,
		RowIndex:        row.RowIndex,
		Raw:             row.Raw,
		ParseStatus:     row.ParseStatus,
		ParseError:      row.ParseError,
		DateRaw:         row.DateRaw,
		DateChosen:      row.DateChosen,
		AmountRaw:       row.AmountRaw,
		DescriptionRaw:  row.DescriptionRaw,
		MerchantRaw:     row.MerchantRaw,
		MerchantNorm:    row.MerchantNorm,
		Kind:            result.Kind,
		KindReason:      result.KindReason,
		IncludedInSpend: result.IncludedInSpend,
		Category:        result.Category,
		IsDuplicate:     duplicate.IsDuplicate,
		DuplicateOf:     duplicate.DuplicateOf,
	}

	if row.Amount != nil {
		r.Amount = decimal.NewNullDecimal(*row.Amount)
	}

	return r
}

// Parsed reconstructs the ingest view of the row, e.g. for re-running
// classification with updated rules.
func (r ImportRow) Parsed() ingest.ParsedRow {
	row := ingest.ParsedRow{
		RowIndex:       r.RowIndex,
		Raw:            r.Raw,
		ParseStatus:    r.ParseStatus,
		ParseError:     r.ParseError,
		DateRaw:        r.DateRaw,
		DateChosen:     r.DateChosen,
		AmountRaw:      r.AmountRaw,
		DescriptionRaw: r.DescriptionRaw,
		MerchantRaw:    r.MerchantRaw,
		MerchantNorm:   r.MerchantNorm,
	}

	if r.Amount.Valid {
		amount := r.Amount.Decimal
		row.Amount = &amount
	}

	return row
}

// SetClassification replaces the system classification, keeping overrides
// untouched.
func (r *ImportRow) SetClassification(result classify.Result) {
	r.Kind = result.Kind
	r.KindReason = result.KindReason
	r.IncludedInSpend = result.IncludedInSpend
	r.Category = result.Category
}

// EffectiveKind is the system kind as modified by a user override, if any.
// Dedupe takes precedence over both.
func (r ImportRow) EffectiveKind() classify.Kind {
	if r.IsDuplicate {
		return classify.KindDuplicate
	}
	if r.OverrideKind != nil {
		return *r.OverrideKind
	}

	return r.Kind
}

// EffectiveIncluded is the effective spend inclusion flag. Duplicates are
// never included.
func (r ImportRow) EffectiveIncluded() bool {
	if r.IsDuplicate {
		return false
	}
	if r.OverrideIncluded != nil {
		return *r.OverrideIncluded
	}

	return r.IncludedInSpend
}

// EffectiveCategory is the effective category label.
func (r ImportRow) EffectiveCategory() string {
	if r.OverrideCategory != nil {
		return *r.OverrideCategory
	}

	return r.Category
}

// SummaryRow returns the effective view used by the batch summarizer.
func (r ImportRow) SummaryRow() summary.Row {
	row := summary.Row{
		DateChosen:      r.DateChosen,
		ParseError:      r.ParseStatus == ingest.ParseStatusError,
		Kind:            r.EffectiveKind(),
		IncludedInSpend: r.EffectiveIncluded(),
		IsDuplicate:     r.IsDuplicate,
	}

	if r.Amount.Valid {
		amount := r.Amount.Decimal
		row.Amount = &amount
	}

	return row
}

package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/pocketledger/backend/internal/classify"
	"github.com/pocketledger/backend/internal/models"
	pl_uuid "github.com/pocketledger/backend/internal/uuid"
)

type ImportQuery struct {
	UserID pl_uuid.UUID `form:"userId" binding:"required"` // ID of the user to import for
}

type ImportBatchQueryFilter struct {
	UserID pl_uuid.UUID       `form:"userId"`
	Status models.BatchStatus `form:"status"`
	Offset uint               `form:"offset" filterField:"false"` // The offset of the first batch returned. Defaults to 0.
	Limit  int                `form:"limit" filterField:"false"`  // Maximum number of batches to return. Defaults to 50.
}

type ImportBatchLinks struct {
	Self         string `json:"self" example:"https://example.com/api/v1/imports/d430d7c3-d14c-4712-9336-ee56965a6673"`          // The batch itself
	Rows         string `json:"rows" example:"https://example.com/api/v1/imports/d430d7c3-d14c-4712-9336-ee56965a6673"`          // The batch including its rows
	RefundPairs  string `json:"refundPairs" example:"https://example.com/api/v1/imports/d430d7c3-.../refund-pairs"`              // Refund pair suggestions
	Reclassify   string `json:"reclassify" example:"https://example.com/api/v1/imports/d430d7c3-.../reclassify"`                 // Re-apply the user's rules
	Commit       string `json:"commit" example:"https://example.com/api/v1/imports/d430d7c3-d14c-4712-9336-ee56965a6673/commit"` // Commit the batch
	Transactions string `json:"transactions" example:"https://example.com/api/v1/transactions?batch=d430d7c3-d14c-4712-9336"`    // Transactions created from this batch
}

// ImportBatch is the API representation of an import batch.
type ImportBatch struct {
	models.ImportBatch
	Links ImportBatchLinks `json:"links"`
}

func newImportBatch(c *gin.Context, model models.ImportBatch) ImportBatch {
	url := c.GetString(string(models.DBContextURL))

	return ImportBatch{
		ImportBatch: model,
		Links: ImportBatchLinks{
			Self:         fmt.Sprintf("%s/v1/imports/%s", url, model.ID),
			Rows:         fmt.Sprintf("%s/v1/imports/%s", url, model.ID),
			RefundPairs:  fmt.Sprintf("%s/v1/imports/%s/refund-pairs", url, model.ID),
			Reclassify:   fmt.Sprintf("%s/v1/imports/%s/reclassify", url, model.ID),
			Commit:       fmt.Sprintf("%s/v1/imports/%s/commit", url, model.ID),
			Transactions: fmt.Sprintf("%s/v1/transactions?batch=%s", url, model.ID),
		},
	}
}

// ImportRow is the API representation of an import row. In addition to the
// system classification it carries the effective (override-merged) values
// consumers must use for totals and commit decisions.
type ImportRow struct {
	models.ImportRow
	EffectiveKind     classify.Kind `json:"effectiveKind" example:"purchase"`
	EffectiveIncluded bool          `json:"effectiveIncluded"`
	EffectiveCategory string        `json:"effectiveCategory,omitempty" example:"Coffee & Drinks"`
}

func newImportRow(model models.ImportRow) ImportRow {
	return ImportRow{
		ImportRow:         model,
		EffectiveKind:     model.EffectiveKind(),
		EffectiveIncluded: model.EffectiveIncluded(),
		EffectiveCategory: model.EffectiveCategory(),
	}
}

func newImportRows(models []models.ImportRow) []ImportRow {
	rows := make([]ImportRow, 0, len(models))
	for _, model := range models {
		rows = append(rows, newImportRow(model))
	}

	return rows
}

// ImportBatchDetail is a batch together with all of its rows.
type ImportBatchDetail struct {
	ImportBatch
	Rows []ImportRow `json:"rows"`
}

type ImportBatchResponse struct {
	Data  *ImportBatchDetail `json:"data"`                                                          // The batch including its rows
	Error *string            `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type ImportBatchListResponse struct {
	Data       []ImportBatch `json:"data"`                                                          // List of batches, without rows
	Error      *string       `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination   `json:"pagination"`                                                    // Pagination information
}

type ImportRowResponse struct {
	Data  *ImportRow `json:"data"`                                                          // The updated row
	Error *string    `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type RefundPairsResponse struct {
	Data  []classify.RefundPair `json:"data"`                                                          // Suggested refund pairs, never auto-applied
	Error *string               `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type CommitResponse struct {
	Data  *CommitResult `json:"data"`                                                          // The commit outcome
	Error *string       `json:"error" example:"this import batch is already committed"`        // The error, if any occurred
}

type CommitResult struct {
	Batch               ImportBatch `json:"batch"`               // The committed batch
	TransactionsCreated int         `json:"transactionsCreated"` // Number of transactions created
	RowsSkipped         int         `json:"rowsSkipped"`         // Rows skipped as duplicate, erroneous or excluded
}

// RowOverrideEditable is the user override patch for one row. Every field
// is optional, sending null clears the override so the system
// classification applies again.
type RowOverrideEditable struct {
	OverrideKind     *classify.Kind `json:"overrideKind"`
	OverrideIncluded *bool          `json:"overrideIncluded"`
	OverrideCategory *string        `json:"overrideCategory"`
}

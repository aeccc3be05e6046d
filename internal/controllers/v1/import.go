package v1

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"golang.org/x/exp/slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pocketledger/backend/internal/classify"
	"github.com/pocketledger/backend/internal/dedupe"
	"github.com/pocketledger/backend/internal/httputil"
	"github.com/pocketledger/backend/internal/ingest"
	"github.com/pocketledger/backend/internal/models"
	"gorm.io/gorm"
)

// RegisterImportRoutes registers the routes for imports with
// the RouterGroup that is passed.
func RegisterImportRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsImportList)
		r.GET("", GetImportBatches)
		r.POST("", CreateImportBatch)
	}

	// Batch with ID
	{
		r.OPTIONS("/:id", OptionsImportDetail)
		r.GET("/:id", GetImportBatch)
		r.DELETE("/:id", DeleteImportBatch)
	}

	// Batch operations
	{
		r.PATCH("/:id/rows/:rowIndex", UpdateImportRow)
		r.POST("/:id/reclassify", ReclassifyImportBatch)
		r.GET("/:id/refund-pairs", GetImportRefundPairs)
		r.POST("/:id/commit", CommitImportBatch)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Imports
// @Success		204
// @Router			/v1/imports [options]
func OptionsImportList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Imports
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/imports/{id} [options]
func OptionsImportDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	err = models.DB.First(&models.ImportBatch{}, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	httputil.OptionsGetDelete(c)
}

// getUploadedFile returns the form file and handles potential errors.
func getUploadedFile(c *gin.Context, suffix string) (multipart.File, string, error) {
	formFile, err := c.FormFile("file")
	if formFile == nil {
		return nil, "", errNoFilePost
	}

	if err != nil {
		return nil, "", err
	}

	if !strings.HasSuffix(formFile.Filename, suffix) {
		return nil, "", fmt.Errorf("%w: %s", errWrongFileSuffix, suffix)
	}

	f, err := formFile.Open()
	if err != nil {
		return nil, "", err
	}

	return f, formFile.Filename, nil
}

// mergeDedupe combines the within-batch and against-storage dedupe passes.
// A row is a duplicate when either pass flags it. The against-storage
// result wins when both do since it resolves the duplicated transaction.
func mergeDedupe(inBatch, existing map[int]dedupe.Result) map[int]dedupe.Result {
	merged := make(map[int]dedupe.Result, len(inBatch))
	for index, result := range inBatch {
		merged[index] = result

		if e, ok := existing[index]; ok && e.IsDuplicate {
			merged[index] = e
		}
	}

	return merged
}

// @Summary		Import statement
// @Description	Parses an uploaded CSV bank statement, classifies and deduplicates every row and stores the batch for review. The batch is not committed, review it and POST to its commit link.
// @Tags			Imports
// @Accept			multipart/form-data
// @Produce		json
// @Success		201		{object}	ImportBatchResponse
// @Failure		400		{object}	ImportBatchResponse
// @Failure		500		{object}	ImportBatchResponse
// @Param			file	formData	file	true	"File to import. Must be a CSV file with a header row."
// @Param			userId	query		string	true	"ID of the user to import for"
// @Router			/v1/imports [post]
func CreateImportBatch(c *gin.Context) {
	var query ImportQuery
	if err := c.BindQuery(&query); err != nil {
		e := httputil.ErrInvalidQuery.Error()
		c.JSON(http.StatusBadRequest, ImportBatchResponse{Error: &e})
		return
	}

	// The query binding treats a zero UUID as present, check explicitly
	if query.UserID.UUID == uuid.Nil {
		e := errUserIDRequired.Error()
		c.JSON(http.StatusBadRequest, ImportBatchResponse{Error: &e})
		return
	}

	f, filename, err := getUploadedFile(c, ".csv")
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, ImportBatchResponse{Error: &e})
		return
	}

	rows, _, err := ingest.Parse(f)
	if err != nil {
		e := fmt.Sprintf("%v: %v", errCSVUnreadable, err)
		c.JSON(http.StatusBadRequest, ImportBatchResponse{Error: &e})
		return
	}

	rules, err := models.RulesForUser(models.DB, query.UserID.UUID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ImportBatchResponse{Error: &e})
		return
	}

	results := classify.Batch(rows, rules)

	existing, err := models.ExistingForUser(models.DB, query.UserID.UUID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ImportBatchResponse{Error: &e})
		return
	}

	duplicates := mergeDedupe(
		dedupe.InBatch(query.UserID.UUID, rows),
		dedupe.AgainstExisting(query.UserID.UUID, rows, existing),
	)

	batch := models.ImportBatch{
		UserID:   query.UserID.UUID,
		Filename: filename,
		Status:   models.BatchStatusPending,
	}

	var stored []models.ImportRow
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&batch).Error; err != nil {
			return err
		}

		for i, row := range rows {
			importRow := models.NewImportRow(batch.ID, row, results[i], duplicates[row.RowIndex])
			if err := tx.Create(&importRow).Error; err != nil {
				return err
			}

			stored = append(stored, importRow)
		}

		return batch.RecomputeSummary(tx)
	})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ImportBatchResponse{Error: &e})
		return
	}

	data := ImportBatchDetail{
		ImportBatch: newImportBatch(c, batch),
		Rows:        newImportRows(stored),
	}

	c.JSON(http.StatusCreated, ImportBatchResponse{Data: &data})
}

// @Summary		Get import batches
// @Description	Returns a list of import batches without their rows
// @Tags			Imports
// @Produce		json
// @Success		200		{object}	ImportBatchListResponse
// @Failure		400		{object}	ImportBatchListResponse
// @Failure		500		{object}	ImportBatchListResponse
// @Param			userId	query		string	false	"Filter by user ID"
// @Param			status	query		string	false	"Filter by status"
// @Param			offset	query		uint	false	"The offset of the first batch returned. Defaults to 0."
// @Param			limit	query		int		false	"Maximum number of batches to return. Defaults to 50."
// @Router			/v1/imports [get]
func GetImportBatches(c *gin.Context) {
	var filter ImportBatchQueryFilter
	if err := c.Bind(&filter); err != nil {
		e := httputil.ErrInvalidQuery.Error()
		c.JSON(http.StatusBadRequest, ImportBatchListResponse{Error: &e})
		return
	}

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

	q := models.DB.
		Order("created_at DESC").
		Where(&models.ImportBatch{
			UserID: filter.UserID.UUID,
			Status: filter.Status,
		}, queryFields...)

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 batches and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var batches []models.ImportBatch
	err := q.Find(&batches).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ImportBatchListResponse{Error: &e})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ImportBatchListResponse{Error: &e})
		return
	}

	data := make([]ImportBatch, 0)
	for _, batch := range batches {
		data = append(data, newImportBatch(c, batch))
	}

	c.JSON(http.StatusOK, ImportBatchListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// getBatchResource returns the batch from the URI of the request or an
// error.
func getBatchResource(c *gin.Context) (models.ImportBatch, error) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		return models.ImportBatch{}, httputil.ErrInvalidUUID
	}

	var batch models.ImportBatch
	err := models.DB.First(&batch, uri.ID).Error
	if err != nil {
		return models.ImportBatch{}, err
	}

	return batch, nil
}

// batchRows returns all rows of a batch in source-file order.
func batchRows(db *gorm.DB, batch models.ImportBatch) ([]models.ImportRow, error) {
	var rows []models.ImportRow
	err := db.Where(&models.ImportRow{BatchID: batch.ID}).Order("row_index ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// @Summary		Get import batch
// @Description	Returns a specific import batch including all of its rows
// @Tags			Imports
// @Produce		json
// @Success		200	{object}	ImportBatchResponse
// @Failure		400	{object}	ImportBatchResponse
// @Failure		404	{object}	ImportBatchResponse
// @Failure		500	{object}	ImportBatchResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/imports/{id} [get]
func GetImportBatch(c *gin.Context) {
	batch, err := getBatchResource(c)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ImportBatchResponse{Error: &e})
		return
	}

	rows, err := batchRows(models.DB, batch)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ImportBatchResponse{Error: &e})
		return
	}

	data := ImportBatchDetail{
		ImportBatch: newImportBatch(c, batch),
		Rows:        newImportRows(rows),
	}

	c.JSON(http.StatusOK, ImportBatchResponse{Data: &data})
}

// @Summary		Delete import batch
// @Description	Deletes an import batch and all of its rows. Transactions created by committing the batch are kept.
// @Tags			Imports
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/imports/{id} [delete]
func DeleteImportBatch(c *gin.Context) {
	batch, err := getBatchResource(c)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where(&models.ImportRow{BatchID: batch.ID}).Delete(&models.ImportRow{}).Error
		if err != nil {
			return err
		}

		return tx.Delete(&batch).Error
	})
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// @Summary		Override row classification
// @Description	Sets or clears the user override for one row. Overrides never modify the system classification, clearing them restores it. The batch summary is recomputed from scratch afterwards.
// @Tags			Imports
// @Accept			json
// @Produce		json
// @Success		200			{object}	ImportRowResponse
// @Failure		400			{object}	ImportRowResponse
// @Failure		404			{object}	ImportRowResponse
// @Failure		500			{object}	ImportRowResponse
// @Param			id			path		URIID				true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			rowIndex	path		int					true	"Zero-based row index within the batch"
// @Param			override	body		RowOverrideEditable	true	"Override"
// @Router			/v1/imports/{id}/rows/{rowIndex} [patch]
func UpdateImportRow(c *gin.Context) {
	var uri URIRow
	if err := c.ShouldBindUri(&uri); err != nil {
		e := httputil.ErrInvalidUUID.Error()
		c.JSON(http.StatusBadRequest, ImportRowResponse{Error: &e})
		return
	}

	batch, err := getBatchResource(c)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ImportRowResponse{Error: &e})
		return
	}

	if batch.Status == models.BatchStatusCommitted {
		e := models.ErrBatchAlreadyCommitted.Error()
		c.JSON(http.StatusBadRequest, ImportRowResponse{Error: &e})
		return
	}

	var row models.ImportRow
	err = models.DB.Where(&models.ImportRow{BatchID: batch.ID, RowIndex: uri.RowIndex}, "BatchID", "RowIndex").First(&row).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ImportRowResponse{Error: &e})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, RowOverrideEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ImportRowResponse{Error: &e})
		return
	}

	var data RowOverrideEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ImportRowResponse{Error: &e})
		return
	}

	// Fields set to null in the body clear the override
	for _, field := range updateFields {
		switch field {
		case "OverrideKind":
			row.OverrideKind = data.OverrideKind
		case "OverrideIncluded":
			row.OverrideIncluded = data.OverrideIncluded
		case "OverrideCategory":
			row.OverrideCategory = data.OverrideCategory
		}
	}

	err = models.DB.Model(&row).Select("OverrideKind", "OverrideIncluded", "OverrideCategory").Updates(&row).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ImportRowResponse{Error: &e})
		return
	}

	err = batch.RecomputeSummary(models.DB)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ImportRowResponse{Error: &e})
		return
	}

	response := newImportRow(row)

	c.JSON(http.StatusOK, ImportRowResponse{Data: &response})
}

// @Summary		Reclassify batch
// @Description	Re-runs rule and heuristic classification for every row of a pending batch, e.g. after merchant rules changed. User overrides are kept and still take precedence.
// @Tags			Imports
// @Produce		json
// @Success		200	{object}	ImportBatchResponse
// @Failure		400	{object}	ImportBatchResponse
// @Failure		404	{object}	ImportBatchResponse
// @Failure		500	{object}	ImportBatchResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/imports/{id}/reclassify [post]
func ReclassifyImportBatch(c *gin.Context) {
	batch, err := getBatchResource(c)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ImportBatchResponse{Error: &e})
		return
	}

	if batch.Status == models.BatchStatusCommitted {
		e := models.ErrBatchAlreadyCommitted.Error()
		c.JSON(http.StatusBadRequest, ImportBatchResponse{Error: &e})
		return
	}

	rules, err := models.RulesForUser(models.DB, batch.UserID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ImportBatchResponse{Error: &e})
		return
	}

	rows, err := batchRows(models.DB, batch)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ImportBatchResponse{Error: &e})
		return
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			rows[i].SetClassification(classify.Transaction(rows[i].Parsed(), rules))

			err := tx.Model(&rows[i]).Select("Kind", "KindReason", "IncludedInSpend", "Category").Updates(&rows[i]).Error
			if err != nil {
				return err
			}
		}

		return batch.RecomputeSummary(tx)
	})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ImportBatchResponse{Error: &e})
		return
	}

	data := ImportBatchDetail{
		ImportBatch: newImportBatch(c, batch),
		Rows:        newImportRows(rows),
	}

	c.JSON(http.StatusOK, ImportBatchResponse{Data: &data})
}

// @Summary		Get refund pair suggestions
// @Description	Returns purchase and refund rows of the batch that likely cancel each other out. Suggestions are informational and never change any row.
// @Tags			Imports
// @Produce		json
// @Success		200	{object}	RefundPairsResponse
// @Failure		400	{object}	RefundPairsResponse
// @Failure		404	{object}	RefundPairsResponse
// @Failure		500	{object}	RefundPairsResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/imports/{id}/refund-pairs [get]
func GetImportRefundPairs(c *gin.Context) {
	batch, err := getBatchResource(c)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), RefundPairsResponse{Error: &e})
		return
	}

	rows, err := batchRows(models.DB, batch)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), RefundPairsResponse{Error: &e})
		return
	}

	parsed := make([]ingest.ParsedRow, 0, len(rows))
	for _, row := range rows {
		parsed = append(parsed, row.Parsed())
	}

	pairs := classify.RefundPairs(parsed)
	if pairs == nil {
		pairs = make([]classify.RefundPair, 0)
	}

	c.JSON(http.StatusOK, RefundPairsResponse{Data: pairs})
}

// commitRow reports whether a transaction can be created from the row.
// Duplicates, unparseable rows, rows without date or amount and rows whose
// effective kind is still unknown are skipped.
func commitRow(row models.ImportRow) bool {
	if row.IsDuplicate || row.ParseStatus == ingest.ParseStatusError {
		return false
	}

	if row.DateChosen == "" || !row.Amount.Valid {
		return false
	}

	return row.EffectiveKind() != classify.KindUnknown
}

// @Summary		Commit batch
// @Description	Converts the effective view of the batch rows into stored transactions and marks the batch as committed. Committed batches are read-only and their transactions participate in deduplication of later imports.
// @Tags			Imports
// @Produce		json
// @Success		201	{object}	CommitResponse
// @Failure		400	{object}	CommitResponse
// @Failure		404	{object}	CommitResponse
// @Failure		500	{object}	CommitResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/imports/{id}/commit [post]
func CommitImportBatch(c *gin.Context) {
	batch, err := getBatchResource(c)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), CommitResponse{Error: &e})
		return
	}

	if batch.Status == models.BatchStatusCommitted {
		e := models.ErrBatchAlreadyCommitted.Error()
		c.JSON(http.StatusBadRequest, CommitResponse{Error: &e})
		return
	}

	rows, err := batchRows(models.DB, batch)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), CommitResponse{Error: &e})
		return
	}

	var created, skipped int
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			if !commitRow(row) {
				skipped++
				continue
			}

			date, err := time.Parse("2006-01-02", row.DateChosen)
			if err != nil {
				skipped++
				continue
			}

			transaction := models.Transaction{
				UserID:          batch.UserID,
				Date:            date,
				Amount:          row.Amount.Decimal,
				Description:     row.DescriptionRaw,
				MerchantNorm:    row.MerchantNorm,
				Kind:            row.EffectiveKind(),
				Category:        row.EffectiveCategory(),
				IncludedInSpend: row.EffectiveIncluded(),
				BatchID:         batch.ID,
			}

			if err := tx.Create(&transaction).Error; err != nil {
				return err
			}

			created++
		}

		batch.Status = models.BatchStatusCommitted

		return tx.Model(&batch).Select("Status").Updates(&batch).Error
	})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), CommitResponse{Error: &e})
		return
	}

	c.JSON(http.StatusCreated, CommitResponse{Data: &CommitResult{
		Batch:               newImportBatch(c, batch),
		TransactionsCreated: created,
		RowsSkipped:         skipped,
	}})
}

package v1_test

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/pocketledger/backend/internal/classify"
	v1 "github.com/pocketledger/backend/internal/controllers/v1"
	"github.com/pocketledger/backend/test"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStatement = `Date,Description,Amount
01/05/2026,STARBUCKS #123 PURCHASE,-42.10
01/05/2026,STARBUCKS #123 PURCHASE,-42.10
01/06/2026,MONTHLY MEMBERSHIP,
`

// uploadFile uploads a file as multipart form data and returns the response.
func uploadFile(t *testing.T, userID uuid.UUID, filename, content string) httptest.ResponseRecorder {
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)

	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return test.Request(t, http.MethodPost, fmt.Sprintf("http://example.com/v1/imports?userId=%s", userID), body, map[string]string{"Content-Type": writer.FormDataContentType()})
}

// createTestBatch uploads a statement and requires that the upload succeeds.
func createTestBatch(t *testing.T, userID uuid.UUID, content string) v1.ImportBatchDetail {
	r := uploadFile(t, userID, "statement.csv", content)
	test.AssertHTTPStatus(t, &r, http.StatusCreated)

	var response v1.ImportBatchResponse
	test.DecodeResponse(t, &r, &response)
	require.NotNil(t, response.Data)

	return *response.Data
}

func (suite *TestSuiteStandard) TestImportCreate() {
	batch := createTestBatch(suite.T(), uuid.New(), testStatement)

	assert.Equal(suite.T(), 3, batch.RowsTotal)
	assert.Equal(suite.T(), 1, batch.RowsIncluded)
	assert.Equal(suite.T(), 2, batch.RowsExcluded)
	assert.Equal(suite.T(), 1, batch.RowsDuplicates)
	assert.Equal(suite.T(), 1, batch.RowsNeedsReview)
	assert.True(suite.T(), batch.TotalIncludedSpend.Equal(decimal.RequireFromString("42.1")), "wrong spend: %s", batch.TotalIncludedSpend)
	assert.Equal(suite.T(), "2026-01-05", batch.DateMin)
	assert.Equal(suite.T(), "2026-01-06", batch.DateMax)
	assert.Equal(suite.T(), "USD", batch.Currency)

	require.Len(suite.T(), batch.Rows, 3)

	first := batch.Rows[0]
	assert.Equal(suite.T(), classify.KindPurchase, first.Kind)
	assert.Equal(suite.T(), "Coffee & Drinks", first.Category)
	assert.Equal(suite.T(), "STARBUCKS 123", first.MerchantNorm)
	assert.True(suite.T(), first.EffectiveIncluded)

	second := batch.Rows[1]
	assert.True(suite.T(), second.IsDuplicate)
	assert.Equal(suite.T(), classify.KindDuplicate, second.EffectiveKind)
	assert.False(suite.T(), second.EffectiveIncluded)
	assert.Nil(suite.T(), second.DuplicateOf)

	third := batch.Rows[2]
	assert.Equal(suite.T(), classify.KindUnknown, third.Kind)
	assert.False(suite.T(), third.Amount.Valid)
}

func (suite *TestSuiteStandard) TestImportCreateFails() {
	tests := []struct {
		name     string
		path     string
		filename string
		content  string
	}{
		{"No userId", "http://example.com/v1/imports", "statement.csv", testStatement},
		{"Nil userId", fmt.Sprintf("http://example.com/v1/imports?userId=%s", uuid.Nil), "statement.csv", testStatement},
		{"Wrong file suffix", fmt.Sprintf("http://example.com/v1/imports?userId=%s", uuid.New()), "statement.txt", testStatement},
		{"Broken CSV", fmt.Sprintf("http://example.com/v1/imports?userId=%s", uuid.New()), "statement.csv", "Date,Description,Amount\n\"unterminated,x,1"},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			body := new(bytes.Buffer)
			writer := multipart.NewWriter(body)
			part, err := writer.CreateFormFile("file", tt.filename)
			require.NoError(t, err)
			_, err = part.Write([]byte(tt.content))
			require.NoError(t, err)
			require.NoError(t, writer.Close())

			r := test.Request(t, http.MethodPost, tt.path, body, map[string]string{"Content-Type": writer.FormDataContentType()})
			test.AssertHTTPStatus(t, &r, http.StatusBadRequest)
		})
	}
}

func (suite *TestSuiteStandard) TestImportCreateNoFile() {
	r := test.Request(suite.T(), http.MethodPost, fmt.Sprintf("http://example.com/v1/imports?userId=%s", uuid.New()), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestImportGet() {
	batch := createTestBatch(suite.T(), uuid.New(), testStatement)

	r := test.Request(suite.T(), http.MethodGet, batch.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.ImportBatchResponse
	test.DecodeResponse(suite.T(), &r, &response)

	assert.Equal(suite.T(), batch.ID, response.Data.ID)
	assert.Len(suite.T(), response.Data.Rows, 3)
}

func (suite *TestSuiteStandard) TestImportGetFails() {
	tests := []struct {
		name   string
		id     string
		status int
	}{
		{"Does not exist", uuid.New().String(), http.StatusNotFound},
		{"Invalid UUID", "notaUUID", http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/imports/%s", tt.id), "")
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestImportList() {
	userID := uuid.New()
	_ = createTestBatch(suite.T(), userID, testStatement)
	_ = createTestBatch(suite.T(), uuid.New(), testStatement)

	r := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/imports?userId=%s", userID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.ImportBatchListResponse
	test.DecodeResponse(suite.T(), &r, &response)

	assert.Len(suite.T(), response.Data, 1)
	assert.Equal(suite.T(), int64(1), response.Pagination.Total)

	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/imports", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Len(suite.T(), response.Data, 2)
}

func (suite *TestSuiteStandard) TestImportDelete() {
	batch := createTestBatch(suite.T(), uuid.New(), testStatement)

	r := test.Request(suite.T(), http.MethodDelete, batch.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.T(), http.MethodGet, batch.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestImportRowOverride() {
	batch := createTestBatch(suite.T(), uuid.New(), testStatement)

	r := test.Request(suite.T(), http.MethodPatch, fmt.Sprintf("%s/rows/0", batch.Links.Self), `{"overrideKind": "transfer", "overrideIncluded": false}`)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.ImportRowResponse
	test.DecodeResponse(suite.T(), &r, &response)

	// The system classification is untouched, the effective view changes
	assert.Equal(suite.T(), classify.KindPurchase, response.Data.Kind)
	assert.Equal(suite.T(), classify.KindTransfer, response.Data.EffectiveKind)
	assert.False(suite.T(), response.Data.EffectiveIncluded)

	// The summary is recomputed from the effective values
	r = test.Request(suite.T(), http.MethodGet, batch.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var detail v1.ImportBatchResponse
	test.DecodeResponse(suite.T(), &r, &detail)
	assert.Equal(suite.T(), 0, detail.Data.RowsIncluded)
	assert.True(suite.T(), detail.Data.TotalIncludedSpend.IsZero())

	// Clearing the override restores the system classification
	r = test.Request(suite.T(), http.MethodPatch, fmt.Sprintf("%s/rows/0", batch.Links.Self), `{"overrideKind": null, "overrideIncluded": null}`)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &response)

	assert.Equal(suite.T(), classify.KindPurchase, response.Data.EffectiveKind)
	assert.True(suite.T(), response.Data.EffectiveIncluded)
}

func (suite *TestSuiteStandard) TestImportRowOverrideFails() {
	batch := createTestBatch(suite.T(), uuid.New(), testStatement)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"Row does not exist", fmt.Sprintf("%s/rows/99", batch.Links.Self), `{"overrideKind": "transfer"}`, http.StatusNotFound},
		{"Invalid kind", fmt.Sprintf("%s/rows/0", batch.Links.Self), `{"overrideKind": "banana"}`, http.StatusBadRequest},
		{"Invalid body", fmt.Sprintf("%s/rows/0", batch.Links.Self), `{ invalid`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPatch, tt.path, tt.body)
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestImportReclassify() {
	userID := uuid.New()
	batch := createTestBatch(suite.T(), userID, testStatement)
	assert.Equal(suite.T(), classify.KindUnknown, batch.Rows[2].Kind)

	createTestMerchantRule(suite.T(), v1.MerchantRuleEditable{
		UserID:     userID,
		Name:       "Gym membership",
		MatchField: classify.MatchFieldDescription,
		MatchType:  classify.MatchTypeContains,
		MatchValue: "MEMBERSHIP",
		SetKind:    classify.KindFeeInterest,
		Priority:   1,
	})

	r := test.Request(suite.T(), http.MethodPost, batch.Links.Reclassify, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.ImportBatchResponse
	test.DecodeResponse(suite.T(), &r, &response)

	assert.Equal(suite.T(), classify.KindFeeInterest, response.Data.Rows[2].Kind)
	assert.Equal(suite.T(), 0, response.Data.RowsNeedsReview)
}

func (suite *TestSuiteStandard) TestImportRefundPairs() {
	statement := `Date,Description,Amount
01/05/2026,AMAZON MKTPLACE,-42.10
01/09/2026,AMAZON MKTPLACE,42.10
`
	batch := createTestBatch(suite.T(), uuid.New(), statement)

	r := test.Request(suite.T(), http.MethodGet, batch.Links.RefundPairs, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.RefundPairsResponse
	test.DecodeResponse(suite.T(), &r, &response)

	require.Len(suite.T(), response.Data, 1)
	assert.Equal(suite.T(), 0, response.Data[0].PurchaseRowIndex)
	assert.Equal(suite.T(), 1, response.Data[0].RefundRowIndex)
}

func (suite *TestSuiteStandard) TestImportCommit() {
	userID := uuid.New()
	batch := createTestBatch(suite.T(), userID, testStatement)

	r := test.Request(suite.T(), http.MethodPost, batch.Links.Commit, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var response v1.CommitResponse
	test.DecodeResponse(suite.T(), &r, &response)

	// The duplicate and the unclassifiable row are skipped
	assert.Equal(suite.T(), 1, response.Data.TransactionsCreated)
	assert.Equal(suite.T(), 2, response.Data.RowsSkipped)
	assert.Equal(suite.T(), "committed", string(response.Data.Batch.Status))

	// Committing again fails
	r = test.Request(suite.T(), http.MethodPost, batch.Links.Commit, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	// Overrides on committed batches are rejected
	r = test.Request(suite.T(), http.MethodPatch, fmt.Sprintf("%s/rows/0", batch.Links.Self), `{"overrideIncluded": false}`)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	// The created transaction is listed
	var transactions v1.TransactionListResponse
	r = test.Request(suite.T(), http.MethodGet, response.Data.Batch.Links.Transactions, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &transactions)
	require.Len(suite.T(), transactions.Data, 1)
	assert.Equal(suite.T(), "STARBUCKS 123", transactions.Data[0].MerchantNorm)
}

func (suite *TestSuiteStandard) TestImportDedupeAgainstCommitted() {
	userID := uuid.New()
	first := createTestBatch(suite.T(), userID, testStatement)

	r := test.Request(suite.T(), http.MethodPost, first.Links.Commit, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	// Re-importing the same statement flags the committed row as duplicate
	// and resolves the transaction it duplicates
	second := createTestBatch(suite.T(), userID, testStatement)

	assert.True(suite.T(), second.Rows[0].IsDuplicate)
	require.NotNil(suite.T(), second.Rows[0].DuplicateOf)
	assert.Equal(suite.T(), 2, second.RowsDuplicates)

	// A different user is not affected
	other := createTestBatch(suite.T(), uuid.New(), testStatement)
	assert.False(suite.T(), other.Rows[0].IsDuplicate)
}

package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	v1 "github.com/pocketledger/backend/internal/controllers/v1"
	"github.com/pocketledger/backend/test"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const committedStatement = `Date,Description,Amount
01/05/2026,STARBUCKS #123,-42.10
01/07/2026,UBER EATS ORDER,-23.50
01/15/2026,PAYROLL ACME CORP,2500.00
`

// commitTestBatch imports and commits a statement, returning the committed
// batch.
func commitTestBatch(t *testing.T, userID uuid.UUID, content string) v1.CommitResult {
	batch := createTestBatch(t, userID, content)

	r := test.Request(t, http.MethodPost, batch.Links.Commit, "")
	test.AssertHTTPStatus(t, &r, http.StatusCreated)

	var response v1.CommitResponse
	test.DecodeResponse(t, &r, &response)
	require.NotNil(t, response.Data)

	return *response.Data
}

func (suite *TestSuiteStandard) TestTransactionsList() {
	userID := uuid.New()
	commit := commitTestBatch(suite.T(), userID, committedStatement)
	assert.Equal(suite.T(), 3, commit.TransactionsCreated)

	r := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/transactions?userId=%s", userID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.TransactionListResponse
	test.DecodeResponse(suite.T(), &r, &response)

	require.Len(suite.T(), response.Data, 3)

	// Sorted by date, newest first
	assert.Equal(suite.T(), "PAYROLL ACME CORP", response.Data[0].MerchantNorm)
	assert.True(suite.T(), response.Data[0].Amount.Equal(decimal.RequireFromString("2500")))
}

func (suite *TestSuiteStandard) TestTransactionsListFilter() {
	userID := uuid.New()
	commit := commitTestBatch(suite.T(), userID, committedStatement)

	tests := []struct {
		name  string
		query string
		len   int
	}{
		{"By user", fmt.Sprintf("userId=%s", userID), 3},
		{"By batch", fmt.Sprintf("batch=%s", commit.Batch.ID), 3},
		{"By kind", "kind=income", 1},
		{"By category", "category=Coffee+%26+Drinks", 1},
		{"By spend inclusion", "includedInSpend=true", 2},
		{"From date", "fromDate=2026-01-10", 1},
		{"Until date", "untilDate=2026-01-06", 1},
		{"Unknown user", fmt.Sprintf("userId=%s", uuid.New()), 0},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/transactions?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)

			var response v1.TransactionListResponse
			test.DecodeResponse(t, &r, &response)
			assert.Len(t, response.Data, tt.len)
		})
	}
}

func (suite *TestSuiteStandard) TestTransactionGet() {
	userID := uuid.New()
	_ = commitTestBatch(suite.T(), userID, committedStatement)

	var list v1.TransactionListResponse
	r := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/transactions?userId=%s", userID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &list)
	require.NotEmpty(suite.T(), list.Data)

	r = test.Request(suite.T(), http.MethodGet, list.Data[0].Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.TransactionResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), list.Data[0].ID, response.Data.ID)
}

func (suite *TestSuiteStandard) TestTransactionGetFails() {
	r := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/transactions/%s", uuid.New()), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)

	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/transactions/NotAUUID", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

// Deleted transactions no longer anchor deduplication, re-importing the
// same statement must not flag the rows again.
func (suite *TestSuiteStandard) TestTransactionDelete() {
	userID := uuid.New()
	statement := "Date,Description,Amount\n01/05/2026,STARBUCKS #123,-42.10\n"
	_ = commitTestBatch(suite.T(), userID, statement)

	var list v1.TransactionListResponse
	r := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/transactions?userId=%s", userID), "")
	test.DecodeResponse(suite.T(), &r, &list)
	require.Len(suite.T(), list.Data, 1)

	r = test.Request(suite.T(), http.MethodDelete, list.Data[0].Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	batch := createTestBatch(suite.T(), userID, statement)
	assert.False(suite.T(), batch.Rows[0].IsDuplicate)
}

package v1

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pocketledger/backend/internal/classify"
	"github.com/pocketledger/backend/internal/models"
	pl_uuid "github.com/pocketledger/backend/internal/uuid"
)

type TransactionLinks struct {
	Self  string `json:"self" example:"https://example.com/api/v1/transactions/d430d7c3-d14c-4712-9336-ee56965a6673"` // The transaction itself
	Batch string `json:"batch" example:"https://example.com/api/v1/imports/6b40ef02-7091-454c-b34a-6fc2e3f3a057"`    // The import batch the transaction originated from
}

// Transaction is the API representation of a committed transaction.
type Transaction struct {
	models.Transaction
	Links TransactionLinks `json:"links"`
}

func newTransaction(c *gin.Context, model models.Transaction) Transaction {
	url := c.GetString(string(models.DBContextURL))

	return Transaction{
		Transaction: model,
		Links: TransactionLinks{
			Self:  fmt.Sprintf("%s/v1/transactions/%s", url, model.ID),
			Batch: fmt.Sprintf("%s/v1/imports/%s", url, model.BatchID),
		},
	}
}

type TransactionListResponse struct {
	Data       []Transaction `json:"data"`                                                          // List of transactions
	Error      *string       `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination   `json:"pagination"`                                                    // Pagination information
}

type TransactionResponse struct {
	Data  *Transaction `json:"data"`                                                          // The transaction
	Error *string      `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type TransactionQueryFilter struct {
	UserID          pl_uuid.UUID  `form:"userId"`                          // Filter by user ID
	BatchID         pl_uuid.UUID  `form:"batch"`                           // Filter by import batch ID
	Kind            classify.Kind `form:"kind"`                            // Filter by kind
	Category        string        `form:"category"`                        // Filter by category
	IncludedInSpend bool          `form:"includedInSpend"`                 // Filter by spend inclusion
	FromDate        time.Time     `form:"fromDate" filterField:"false" time_format:"2006-01-02"` // Earliest date to include, inclusive
	UntilDate       time.Time     `form:"untilDate" filterField:"false" time_format:"2006-01-02"` // Latest date to include, inclusive
	Offset          uint          `form:"offset" filterField:"false"`      // The offset of the first transaction returned. Defaults to 0.
	Limit           int           `form:"limit" filterField:"false"`       // Maximum number of transactions to return. Defaults to 50.
}

func (f TransactionQueryFilter) model() models.Transaction {
	return models.Transaction{
		UserID:          f.UserID.UUID,
		BatchID:         f.BatchID.UUID,
		Kind:            f.Kind,
		Category:        f.Category,
		IncludedInSpend: f.IncludedInSpend,
	}
}

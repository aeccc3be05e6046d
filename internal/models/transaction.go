package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pocketledger/backend/internal/classify"
	"github.com/pocketledger/backend/internal/dedupe"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction is a committed statement row. Transactions are created from
// the effective view of import rows when a batch is committed and are what
// later imports are deduplicated against.
type Transaction struct {
	DefaultModel
	UserID uuid.UUID `json:"userId" gorm:"index"`

	Date   time.Time       `json:"date" example:"2026-01-05T00:00:00Z"`
	Amount decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,8)" example:"-42.10"`

	Description  string `json:"description,omitempty"`
	MerchantNorm string `json:"merchantNorm,omitempty" example:"STARBUCKS 123"`

	Kind            classify.Kind `json:"kind" example:"purchase"`
	Category        string        `json:"category,omitempty" example:"Coffee & Drinks"`
	IncludedInSpend bool          `json:"includedInSpend"`

	// BatchID references the import batch this transaction originated from
	BatchID uuid.UUID `json:"batchId"`
}

// AfterFind updates the timestamps to use UTC as
// timezone, not +0000.
func (t *Transaction) AfterFind(_ *gorm.DB) (err error) {
	t.Date = t.Date.In(time.UTC)
	return nil
}

// BeforeSave sets the timezone for the Date to UTC.
func (t *Transaction) BeforeSave(_ *gorm.DB) (err error) {
	if !t.Kind.Valid() {
		return ErrKindInvalid
	}

	t.Date = t.Date.In(time.UTC)
	return nil
}

// Existing returns the fingerprint view used by the against-storage dedupe
// pass.
func (t Transaction) Existing() dedupe.Existing {
	existing := dedupe.Existing{
		ID:           t.ID,
		Amount:       t.Amount,
		MerchantNorm: t.MerchantNorm,
	}

	if !t.Date.IsZero() {
		existing.Date = t.Date.Format("2006-01-02")
	}

	return existing
}

// ExistingForUser loads the fingerprint views of all stored transactions
// of one user in a single batched fetch.
func ExistingForUser(db *gorm.DB, userID uuid.UUID) ([]dedupe.Existing, error) {
	var transactions []Transaction
	err := db.Where("user_id = ?", userID).Find(&transactions).Error
	if err != nil {
		return nil, err
	}

	existing := make([]dedupe.Existing, 0, len(transactions))
	for _, transaction := range transactions {
		existing = append(existing, transaction.Existing())
	}

	return existing, nil
}

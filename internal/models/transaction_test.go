package models_test

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pocketledger/backend/internal/classify"
	"github.com/pocketledger/backend/internal/models"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestTransactionKindValidation() {
	transaction := models.Transaction{
		UserID: uuid.New(),
		Kind:   "banana",
	}
	err := models.DB.Create(&transaction).Error

	suite.Assert().True(errors.Is(err, models.ErrKindInvalid), "wrong error: %v", err)
}

// Existing formats the date exactly like the ingestor so fingerprints of
// stored transactions and fresh rows line up.
func (suite *TestSuiteStandard) TestTransactionExisting() {
	transaction := models.Transaction{
		UserID:       uuid.New(),
		Date:         time.Date(2026, 1, 5, 14, 30, 0, 0, time.UTC),
		Amount:       decimal.RequireFromString("-42.10"),
		MerchantNorm: "STARBUCKS 123",
		Kind:         classify.KindPurchase,
	}
	suite.Require().NoError(models.DB.Create(&transaction).Error)

	existing := transaction.Existing()
	suite.Assert().Equal(transaction.ID, existing.ID)
	suite.Assert().Equal("2026-01-05", existing.Date)
	suite.Assert().Equal("STARBUCKS 123", existing.MerchantNorm)
}

func (suite *TestSuiteStandard) TestExistingForUser() {
	userID := uuid.New()

	transactions := []models.Transaction{
		{UserID: userID, Date: time.Now(), Amount: decimal.New(-1, 0), Kind: classify.KindPurchase},
		{UserID: userID, Date: time.Now(), Amount: decimal.New(-2, 0), Kind: classify.KindPurchase},
		{UserID: uuid.New(), Date: time.Now(), Amount: decimal.New(-3, 0), Kind: classify.KindPurchase},
	}

	for i := range transactions {
		suite.Require().NoError(models.DB.Create(&transactions[i]).Error)
	}

	existing, err := models.ExistingForUser(models.DB, userID)
	suite.Require().NoError(err)

	suite.Assert().Len(existing, 2)
}

package models_test

import (
	"errors"

	"github.com/google/uuid"
	"github.com/pocketledger/backend/internal/models"
)

// The query callback rewrites gorm's "record not found" into an error that
// names the resource.
func (suite *TestSuiteStandard) TestResourceNotFoundNamesResource() {
	err := models.DB.First(&models.ImportBatch{}, uuid.New()).Error

	suite.Require().NotNil(err)
	suite.Assert().True(errors.Is(err, models.ErrResourceNotFound))
	suite.Assert().Contains(err.Error(), "import batch")
}

// Unexpected database errors are replaced with a general error so that no
// internals leak to API consumers.
func (suite *TestSuiteStandard) TestClosedDatabaseIsGeneralError() {
	sqlDB, err := models.DB.DB()
	suite.Require().NoError(err)
	sqlDB.Close()

	err = models.DB.First(&models.ImportBatch{}, uuid.New()).Error
	suite.Assert().True(errors.Is(err, models.ErrGeneral), "wrong error: %v", err)
}

package v1

import (
	"errors"
	"net/http"

	"github.com/pocketledger/backend/internal/models"
)

// status returns the appropriate HTTP status for an error
func status(err error) int {
	if errors.Is(err, models.ErrGeneral) {
		return http.StatusInternalServerError
	}

	if errors.Is(err, models.ErrResourceNotFound) {
		return http.StatusNotFound
	}

	return http.StatusBadRequest
}

// Import errors
var (
	errNoFilePost      = errors.New("you must send a file to this endpoint")
	errUserIDRequired  = errors.New("the userId query parameter must be set to a valid UUID")
	errWrongFileSuffix = errors.New("this endpoint only supports files of the following types")
	errCSVUnreadable   = errors.New("the file could not be read as CSV")
)

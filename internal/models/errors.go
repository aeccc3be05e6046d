package models

import "errors"

var (
	ErrGeneral          = errors.New("an error occurred on the server during your request")
	ErrResourceNotFound = errors.New("there is no")

	ErrRowIndexNotUnique      = errors.New("a row with this index already exists in the batch")
	ErrMatchFieldInvalid      = errors.New("the match field must be one of: merchant_norm, description")
	ErrMatchTypeInvalid       = errors.New("the match type must be one of: contains, equals, regex, glob")
	ErrKindInvalid            = errors.New("the transaction kind is not valid")
	ErrBatchAlreadyCommitted  = errors.New("this import batch is already committed")
	ErrBatchStatusInvalid     = errors.New("the batch status must be one of: pending, committed")
	ErrMatchValueEmpty        = errors.New("the match value must not be empty")
	ErrParseStatusInvalid     = errors.New("the parse status must be one of: ok, error")
	ErrImportRowBatchRequired = errors.New("an import row must reference a batch")
)

package errors

import "errors"

var (
	ErrNotFound = errors.New("care request not found")

	ErrInvalidID = errors.New("invalid care request ID format")

	ErrInvalidDateRange = errors.New("end date must be after start date")
)

package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound       = errors.New("resource not found")
	ErrModelNotFound  = fmt.Errorf("%w: model", ErrNotFound)
	ErrChartNotFound  = fmt.Errorf("%w: chart", ErrNotFound)
	ErrColumnNotFound = fmt.Errorf("%w: column", ErrNotFound)

	// Data errors
	ErrEmptyDataset  = errors.New("dataset has no rows")
	ErrNonNumeric    = errors.New("non-numeric value in numeric column")
	ErrMissingColumn = errors.New("required column missing")

	// Model errors
	ErrSingleClass  = errors.New("training target has fewer than two classes")
	ErrNotTrained   = errors.New("model has not been trained")
	ErrNotPrepared  = errors.New("data has not been preprocessed")
	ErrDataNotReady = errors.New("data has not been loaded")
)

// NewNonNumericError reports a bad numeric cell; row is 1-based and counts the header
func NewNonNumericError(column string, row int, value string) error {
	return fmt.Errorf("%w: column %q row %d value %q", ErrNonNumeric, column, row, value)
}

// IsNotFoundError reports whether err wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

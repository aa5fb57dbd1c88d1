package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	ErrNotFound    = errors.New("resource not found")
	ErrRunNotFound = fmt.Errorf("%w: run", ErrNotFound)

	// Ingestion errors
	ErrHeaderNotFound   = errors.New("header row not found")
	ErrSheetNotFound    = fmt.Errorf("%w: sheet", ErrNotFound)
	ErrInvalidWorkbook  = errors.New("invalid workbook")
	ErrInsufficientData = errors.New("insufficient data for analysis")
)

// NewHeaderNotFoundError reports a bounded header scan that matched nothing.
func NewHeaderNotFoundError(tokens []string, scanned int) error {
	return fmt.Errorf("%w: no row among the first %d contains %q", ErrHeaderNotFound, scanned, tokens)
}

// NewSheetNotFoundError reports a sheet missing from the workbook.
func NewSheetNotFoundError(sheet string) error {
	return fmt.Errorf("%w %q", ErrSheetNotFound, sheet)
}

// IsNotFoundError checks for any not-found condition
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsHeaderNotFoundError checks for a sheet whose header row could not be located
func IsHeaderNotFoundError(err error) bool {
	return errors.Is(err, ErrHeaderNotFound)
}

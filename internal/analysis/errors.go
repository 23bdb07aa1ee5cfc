package analysis

import "errors"

var (
	// ErrColumnMissing reports that a required column is absent from the
	// table or holds no data.
	ErrColumnMissing = errors.New("required column missing or empty")

	// ErrInsufficientData reports that fewer than two usable samples were
	// available for a cross-country comparison.
	ErrInsufficientData = errors.New("insufficient data for comparison")
)

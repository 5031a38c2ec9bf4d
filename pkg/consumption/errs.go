package consumption

import "errors"

var (
	// ErrEmptyTable indicates a comparison table without entries.
	ErrEmptyTable = errors.New("consumption: empty comparison table")

	// ErrUnsortedTable indicates thresholds that are not strictly increasing.
	ErrUnsortedTable = errors.New("consumption: thresholds must be strictly increasing")
)

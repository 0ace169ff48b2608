package grid

import "errors"

// Snapshot validation errors.
var (
	// ErrEmptySnapshot is returned when a snapshot has no rows or no columns.
	ErrEmptySnapshot = errors.New("snapshot has a zero dimension")

	// ErrRaggedSnapshot is returned when snapshot rows differ in length.
	ErrRaggedSnapshot = errors.New("snapshot rows have different lengths")

	// ErrOutOfBounds is returned when a position lies outside the grid.
	ErrOutOfBounds = errors.New("position out of bounds")
)

package dataset

import "errors"

// Dataset errors.
var (
	// ErrTableUnreadable is returned when an input table cannot be opened or parsed.
	ErrTableUnreadable = errors.New("table unreadable")

	// ErrInvalidRatios is returned when split ratios do not sum to 1.
	ErrInvalidRatios = errors.New("split ratios must sum to 1.0")
)

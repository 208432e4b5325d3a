package pool

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	// ErrInvalidCategory is returned when a category name is unknown or has no tags.
	ErrInvalidCategory = errors.New("invalid category")

	// ErrInvalidFilter is returned when a filter id does not resolve.
	ErrInvalidFilter = errors.New("invalid filter")

	// ErrNoGenrePool is returned when filters are applied before a category
	// is selected. It matches ErrInvalidFilter under errors.Is.
	ErrNoGenrePool = fmt.Errorf("%w: no genre pool selected", ErrInvalidFilter)

	// ErrEmptyPool is returned when a category matches no items, or when
	// there is nothing left to serve.
	ErrEmptyPool = errors.New("pool is empty")

	// ErrInvalidRatio is returned for a fresh injection ratio outside [0, 1].
	ErrInvalidRatio = errors.New("fresh injection ratio must be between 0 and 1")

	// ErrInvalidStrategy is returned for an unknown selection strategy.
	ErrInvalidStrategy = errors.New("unknown selection strategy")
)

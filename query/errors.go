package query

import "errors"

var (
	// ErrInvalidKRange indicates min/max retrieval bounds that are not
	// strictly ordered positive integers.
	ErrInvalidKRange = errors.New("invalid top-k range")

	// ErrInvalidCacheCapacity indicates a non-positive cache capacity.
	ErrInvalidCacheCapacity = errors.New("invalid cache capacity")
)

package domain

import "errors"

// Caller errors raised before any driver or store state is touched.
var (
	ErrInvalidCapacity = errors.New("invalid capacity")
	ErrInvalidOrder    = errors.New("invalid order")
)

package guide

import "errors"

var (
	// ErrInvalidGuide indicates a roster entry that cannot be used.
	ErrInvalidGuide = errors.New("invalid guide")
	// ErrDuplicateGuide indicates two roster entries share an id.
	ErrDuplicateGuide = errors.New("duplicate guide id")
)

package entity

import "errors"

// Domain errors
var (
	// Retrieval errors
	ErrNoResults = errors.New("no candidates found")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidParameter = errors.New("invalid parameter")
)

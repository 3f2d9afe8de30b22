package domain

import "errors"

// Sentinel errors for the application.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal server error")
	ErrNoSnapshot   = errors.New("snapshot not found")
)

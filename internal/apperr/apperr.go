// Package apperr defines the error kinds a moving-average run can fail with.
// Callers wrap them with context and match with errors.Is.
package apperr

import "errors"

var (
	// ErrInvalidWindowSize is returned when the window is negative or not an integer.
	ErrInvalidWindowSize = errors.New("window_size must be a non-negative integer")

	// ErrDataFormat is returned for unreadable, malformed or empty event logs.
	ErrDataFormat = errors.New("invalid event log")

	// ErrOutputExists is returned when the destination exists and overwrite was not requested.
	ErrOutputExists = errors.New("overwrite was not specified and output file already exists")

	// ErrInvalidFilter is returned when an event filter does not compile or
	// cannot be evaluated.
	ErrInvalidFilter = errors.New("invalid filter")

	// ErrIO wraps filesystem failures on the input or output paths.
	ErrIO = errors.New("i/o failure")
)

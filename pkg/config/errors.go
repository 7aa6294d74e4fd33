package config

import "errors"

var (
	// ErrNilPointer is returned when a nil pointer is passed to Load.
	ErrNilPointer = errors.New("config: nil pointer provided")

	// ErrParsing is returned when environment variables cannot be parsed
	// into the target struct.
	ErrParsing = errors.New("config: failed to parse environment variables")
)

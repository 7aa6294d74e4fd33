package consumer

import "errors"

var (
	// ErrSourceNil is returned by New when no source is provided.
	ErrSourceNil = errors.New("consumer: source cannot be nil")

	// ErrNotStarted is returned by AddTask before Start has been called.
	ErrNotStarted = errors.New("consumer: pool not started")

	// ErrPoolClosed is returned by AddTask once the pool is shutting down.
	ErrPoolClosed = errors.New("consumer: pool is closed")

	// ErrShutdownTimeout is returned by Stop when running tasks do not drain
	// within the grace period.
	ErrShutdownTimeout = errors.New("consumer: shutdown grace period exceeded")
)

package stream

import "errors"

var (
	// ErrClosed is returned by Subscribe after the stream has finished, and
	// by Take on subscriptions whose stream has closed.
	ErrClosed = errors.New("stream: stream is closed")
)

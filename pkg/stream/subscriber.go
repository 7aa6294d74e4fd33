package stream

import (
	"log/slog"
	"sync/atomic"
)

// subscriber owns one unbounded buffer on the receiving side of a stream.
// Items emitted after close are silently dropped.
type subscriber[T any] struct {
	buf    *buffer[T]
	closed atomic.Bool
	logger *slog.Logger
}

func newSubscriber[T any](logger *slog.Logger) *subscriber[T] {
	return &subscriber[T]{
		buf:    newBuffer[T](),
		logger: logger,
	}
}

func (s *subscriber[T]) emit(item T) {
	if s.closed.Load() {
		s.logger.Debug("dropped item emitted to closed subscriber")
		return
	}
	s.buf.put(item)
}

// close marks the subscriber closed and clears its buffer. Only the first
// caller performs the transition; buffered but unconsumed items are lost.
func (s *subscriber[T]) close() {
	if s.closed.CompareAndSwap(false, true) {
		s.buf.close()
	}
}

package stream

import "context"

// Subscription is the read-only handle over one subscriber's buffer. It is a
// thin immutable view: the bound buffer never changes for the subscription's
// lifetime, and it remains safe to read after the stream closes (it then
// behaves as permanently empty, with Take returning ErrClosed).
type Subscription[T any] struct {
	id  uint64
	buf *buffer[T]
}

// ID returns the stable handle the subscription is registered under.
// Handles are never reused within one stream.
func (s *Subscription[T]) ID() uint64 {
	return s.id
}

// Take blocks until an item is available and returns it in FIFO order.
// It returns ErrClosed once the stream has closed, or ctx.Err() when the
// context is cancelled first.
func (s *Subscription[T]) Take(ctx context.Context) (T, error) {
	return s.buf.take(ctx)
}

// IsEmpty reports whether the buffer currently holds zero items. The snapshot
// is always racy with concurrent delivery; treat it as a hint, not a
// synchronization point.
func (s *Subscription[T]) IsEmpty() bool {
	return s.buf.empty()
}

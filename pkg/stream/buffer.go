package stream

import (
	"context"
	"sync"
)

// buffer is an unbounded FIFO queue with blocking take semantics. Waiters are
// woken by closing the current generation channel; each mutation under the
// lock replaces it with a fresh one.
type buffer[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool
	wake   chan struct{}
}

func newBuffer[T any]() *buffer[T] {
	return &buffer[T]{wake: make(chan struct{})}
}

// put appends an item. Appends to a closed buffer are discarded.
func (b *buffer[T]) put(item T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.items = append(b.items, item)
	b.signal()
}

// take blocks until an item is available, the buffer is closed (ErrClosed),
// or the context is done (ctx.Err()).
func (b *buffer[T]) take(ctx context.Context) (T, error) {
	var zero T
	for {
		b.mu.Lock()
		if len(b.items) > 0 {
			item := b.items[0]
			b.items = b.items[1:]
			b.mu.Unlock()
			return item, nil
		}
		if b.closed {
			b.mu.Unlock()
			return zero, ErrClosed
		}
		wake := b.wake
		b.mu.Unlock()

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-wake:
		}
	}
}

// empty reports whether the buffer currently holds zero items. The result is
// immediately stale under concurrent puts; callers must treat it as a hint.
func (b *buffer[T]) empty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items) == 0
}

// close discards buffered items and releases all blocked takers.
// It is safe to call repeatedly.
func (b *buffer[T]) close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	b.items = nil
	b.signal()
}

// signal wakes the current generation of waiters. Callers must hold b.mu.
func (b *buffer[T]) signal() {
	close(b.wake)
	b.wake = make(chan struct{})
}

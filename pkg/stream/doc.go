// Package stream provides a single-producer broadcast primitive: one stream
// fans an append-only sequence of items out to any number of independent
// subscribers, each of which buffers its own copy and drains it at its own
// pace.
//
// The package uses Go generics for type safety, so a stream of one item type
// never mixes with another.
//
// A Stream is constructed without starting any concurrency and is explicitly
// started with a context that owns the producer loop:
//
//	s := stream.New[string](nil)
//	if err := s.Start(ctx); err != nil {
//		// handle error
//	}
//	defer s.Stop()
//
//	sub, err := s.Subscribe()
//	if err != nil {
//		// stream already closed
//	}
//
//	s.AddData("hello")
//
//	item, err := sub.Take(ctx) // blocks until an item arrives
//
// Delivery guarantees: every subscriber registered at the moment an item is
// broadcast receives that item exactly once, and all subscribers observe items
// in the same (append) order. Subscribers added later never see items that
// were already broadcast; there is no replay. An item broadcast while no
// subscriber is registered is discarded.
//
// Subscriber buffers are unbounded, so a slow consumer never applies
// backpressure to the producer. When the stream closes, every subscriber
// buffer is cleared and any goroutine blocked in Take is released with
// ErrClosed.
package stream

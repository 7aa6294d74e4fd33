package stream

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alphadose/haxmap"
)

// Stream owns an append-only source sequence and fans new items out to every
// registered subscriber. Construction does not start any concurrency; call
// Start to launch the producer loop and Stop (or cancel the context) to tear
// it down. The loop performs the close transition as its last act, so a
// stopped stream is always a closed stream.
type Stream[T any] struct {
	source   []T
	sourceMu sync.RWMutex

	subscribers *haxmap.Map[uint64, *subscriber[T]]
	subSeq      atomic.Uint64

	// closed transitions false->true exactly once (CAS). closeMu gives
	// subscribes shared access and the close transition exclusive access, so
	// a subscribe can never half-complete after close decided no more
	// subscribers are allowed.
	closed  atomic.Bool
	closeMu sync.RWMutex

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	idleInterval time.Duration
	pushInterval time.Duration
	logger       *slog.Logger
}

// New creates a stream seeded with a private copy of initial. The stream is
// idle until Start is called.
func New[T any](initial []T, opts ...Option) *Stream[T] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	source := make([]T, len(initial))
	copy(source, initial)

	return &Stream[T]{
		source:       source,
		subscribers:  haxmap.New[uint64, *subscriber[T]](),
		done:         make(chan struct{}),
		idleInterval: o.idleInterval,
		pushInterval: o.pushInterval,
		logger:       o.logger,
	}
}

// Start launches the producer loop in the background. The loop runs until the
// context is cancelled or Stop is called.
func (s *Stream[T]) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return fmt.Errorf("stream already started")
	}
	if s.closed.Load() {
		return ErrClosed
	}

	ctx, s.cancel = context.WithCancel(ctx)
	go s.run(ctx)

	s.logger.Debug("stream started")
	return nil
}

// Stop tears down the producer loop and waits for it to perform the close
// transition. It is safe to call on a never-started or already-stopped stream.
func (s *Stream[T]) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel == nil {
		// Never started: close directly so subscribers are still released.
		s.close()
		return
	}

	cancel()
	<-s.done
}

// AddData appends an item to the live source sequence. The next broadcast
// tick observes the live sequence position, so every subscriber active at
// that future instant receives the item, including subscribers added between
// the append and the tick.
func (s *Stream[T]) AddData(item T) {
	s.sourceMu.Lock()
	s.source = append(s.source, item)
	size := len(s.source)
	s.sourceMu.Unlock()

	s.logger.Debug("item appended to stream", slog.Int("source_len", size))
}

// Subscribe registers a new subscriber and returns its subscription. Any
// number of subscribes may proceed concurrently; only the close transition
// excludes them. A subscribe that returns successfully is guaranteed to
// receive every item broadcast from that point on.
func (s *Stream[T]) Subscribe() (*Subscription[T], error) {
	s.closeMu.RLock()
	defer s.closeMu.RUnlock()

	if s.closed.Load() {
		s.logger.Warn("subscribe attempted on closed stream")
		return nil, ErrClosed
	}

	id := s.subSeq.Add(1)
	sub := newSubscriber[T](s.logger)
	s.subscribers.Set(id, sub)

	s.logger.Debug("subscriber added",
		slog.Uint64("subscription_id", id),
		slog.Int("subscribers", s.SubscriberCount()))

	return &Subscription[T]{id: id, buf: sub.buf}, nil
}

// Unsubscribe removes and closes the subscriber registered under id. Unknown
// handles are a logged no-op.
func (s *Stream[T]) Unsubscribe(id uint64) {
	sub, ok := s.subscribers.Get(id)
	if !ok {
		s.logger.Warn("unsubscribe for unknown subscription", slog.Uint64("subscription_id", id))
		return
	}

	s.subscribers.Del(id)
	sub.close()

	s.logger.Debug("subscriber removed",
		slog.Uint64("subscription_id", id),
		slog.Int("subscribers", s.SubscriberCount()))
}

// SubscriberCount returns the number of currently registered subscribers.
func (s *Stream[T]) SubscriberCount() int {
	return int(s.subscribers.Len())
}

// Closed reports whether the stream has performed its close transition.
func (s *Stream[T]) Closed() bool {
	return s.closed.Load()
}

// run is the producer loop: one instance per stream, for the stream's entire
// lifetime. Registration changes are observed only at tick boundaries, so all
// subscribers present at a delivery tick receive the same item in that tick.
func (s *Stream[T]) run(ctx context.Context) {
	defer close(s.done)
	defer s.close()

	cursor := 0
	for {
		if ctx.Err() != nil {
			return
		}

		if s.subscribers.Len() == 0 {
			// Idle pacing only: the cursor still advances below, so items
			// broadcast while nobody listens are discarded, never replayed
			// to late subscribers.
			if !s.sleep(ctx, s.idleInterval) {
				return
			}
		}

		item, ok := s.itemAt(cursor)
		if !ok {
			// Caught up with the source; it may still grow via AddData.
			if !s.sleep(ctx, s.idleInterval) {
				return
			}
			continue
		}
		cursor++

		s.subscribers.ForEach(func(_ uint64, sub *subscriber[T]) bool {
			sub.emit(item)
			return true
		})
		s.logger.Debug("broadcast tick delivered item", slog.Int("cursor", cursor))

		if !s.sleep(ctx, s.pushInterval) {
			return
		}
	}
}

func (s *Stream[T]) itemAt(cursor int) (T, bool) {
	s.sourceMu.RLock()
	defer s.sourceMu.RUnlock()

	if cursor >= len(s.source) {
		var zero T
		return zero, false
	}
	return s.source[cursor], true
}

// sleep waits for d and reports whether the loop should keep running.
func (s *Stream[T]) sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// close performs the one-shot close transition: it takes exclusive access
// against in-flight subscribes, flips the closed flag, and closes every
// registered subscriber exactly once.
func (s *Stream[T]) close() {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()

	if !s.closed.CompareAndSwap(false, true) {
		return
	}

	s.subscribers.ForEach(func(_ uint64, sub *subscriber[T]) bool {
		sub.close()
		return true
	})

	s.logger.Info("stream closed", slog.Int("subscribers", s.SubscriberCount()))
}

package streamhub

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/alphadose/haxmap"

	"github.com/streamkit/streamkit/pkg/stream"
)

// Hub manages many streams keyed by generated numeric identifiers and, per
// stream, the subscriptions created through it. All methods are safe for
// concurrent use.
type Hub[T any] struct {
	streams   *haxmap.Map[uint64, *entry[T]]
	streamSeq atomic.Uint64

	// ctx owns every producer loop the hub starts. Streams live until
	// CloseStream, Close, or this context's cancellation, never until some
	// caller's shorter-lived context.
	ctx context.Context

	closeOnce sync.Once

	streamOpts []stream.Option
	logger     *slog.Logger
}

// entry pairs one stream with the subscriptions routed through the hub.
// Subscription ids are the stream's own stable handles, so they stay valid
// under concurrent unsubscribes.
type entry[T any] struct {
	stream *stream.Stream[T]
	subs   *haxmap.Map[uint64, *stream.Subscription[T]]
}

// HubOption configures a Hub.
type HubOption[T any] func(*Hub[T])

// WithLogger sets the hub logger, also passed down to created streams.
// Nil loggers are ignored.
func WithLogger[T any](l *slog.Logger) HubOption[T] {
	return func(h *Hub[T]) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithStreamOptions sets options applied to every stream the hub creates,
// such as producer pacing intervals.
func WithStreamOptions[T any](opts ...stream.Option) HubOption[T] {
	return func(h *Hub[T]) {
		h.streamOpts = append(h.streamOpts, opts...)
	}
}

// New creates an empty hub. ctx is the hub's lifecycle context: every stream
// created later runs its producer loop under it, so cancelling it closes all
// streams. A nil ctx falls back to context.Background().
func New[T any](ctx context.Context, opts ...HubOption[T]) *Hub[T] {
	if ctx == nil {
		ctx = context.Background()
	}

	h := &Hub[T]{
		streams: haxmap.New[uint64, *entry[T]](),
		ctx:     ctx,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// CreateStream constructs a stream with an empty source, starts its producer
// loop under the hub's lifecycle context, and returns its identifier.
func (h *Hub[T]) CreateStream() uint64 {
	opts := append([]stream.Option{stream.WithLogger(h.logger)}, h.streamOpts...)
	s := stream.New[T](nil, opts...)

	id := h.streamSeq.Add(1)
	h.streams.Set(id, &entry[T]{
		stream: s,
		subs:   haxmap.New[uint64, *stream.Subscription[T]](),
	})

	if err := s.Start(h.ctx); err != nil {
		h.logger.Error("failed to start stream",
			slog.Uint64("stream_id", id),
			slog.String("error", err.Error()))
	}

	h.logger.Info("stream created", slog.Uint64("stream_id", id))
	return id
}

// AddData appends an item to the named stream.
func (h *Hub[T]) AddData(streamID uint64, item T) error {
	e, ok := h.streams.Get(streamID)
	if !ok {
		return ErrStreamNotFound
	}
	e.stream.AddData(item)
	return nil
}

// Subscribe registers a new subscriber on the named stream and returns the
// subscription identifier. It fails with ErrStreamNotFound for unknown
// streams and stream.ErrClosed for finished ones.
func (h *Hub[T]) Subscribe(streamID uint64) (uint64, error) {
	e, ok := h.streams.Get(streamID)
	if !ok {
		return 0, ErrStreamNotFound
	}

	sub, err := e.stream.Subscribe()
	if err != nil {
		return 0, err
	}
	e.subs.Set(sub.ID(), sub)

	h.logger.Info("subscription created",
		slog.Uint64("stream_id", streamID),
		slog.Uint64("subscription_id", sub.ID()))

	return sub.ID(), nil
}

// Unsubscribe removes a subscription from its stream and closes the backing
// subscriber.
func (h *Hub[T]) Unsubscribe(streamID, subscriptionID uint64) error {
	e, sub, err := h.subscription(streamID, subscriptionID)
	if err != nil {
		return err
	}

	e.subs.Del(subscriptionID)
	e.stream.Unsubscribe(sub.ID())
	return nil
}

// TakeData blocks until the named subscription yields an item. It unblocks
// with stream.ErrClosed when the stream finishes, or ctx.Err() when the
// caller gives up first.
func (h *Hub[T]) TakeData(ctx context.Context, streamID, subscriptionID uint64) (T, error) {
	_, sub, err := h.subscription(streamID, subscriptionID)
	if err != nil {
		var zero T
		return zero, err
	}
	return sub.Take(ctx)
}

// IsEmpty reports whether the named subscription currently holds no buffered
// items. The answer is a racy hint, as with stream.Subscription.IsEmpty.
func (h *Hub[T]) IsEmpty(streamID, subscriptionID uint64) (bool, error) {
	_, sub, err := h.subscription(streamID, subscriptionID)
	if err != nil {
		return false, err
	}
	return sub.IsEmpty(), nil
}

// HasSubscription reports whether the identifier pair is known, using the
// same error taxonomy as the other lookups: ErrStreamNotFound for an unknown
// stream, ErrSubscriptionNotFound for an unknown subscription, nil otherwise.
func (h *Hub[T]) HasSubscription(streamID, subscriptionID uint64) error {
	_, _, err := h.subscription(streamID, subscriptionID)
	return err
}

// SubscriberCount returns the number of active subscribers on a stream.
func (h *Hub[T]) SubscriberCount(streamID uint64) (int, error) {
	e, ok := h.streams.Get(streamID)
	if !ok {
		return 0, ErrStreamNotFound
	}
	return e.stream.SubscriberCount(), nil
}

// CloseStream finishes the named stream: the producer loop exits, every
// subscriber is closed, and further subscribes fail with stream.ErrClosed.
// The identifier stays known, so post-close lookups report Closed rather than
// NotFound.
func (h *Hub[T]) CloseStream(streamID uint64) error {
	e, ok := h.streams.Get(streamID)
	if !ok {
		return ErrStreamNotFound
	}

	e.stream.Stop()
	h.logger.Info("stream closed", slog.Uint64("stream_id", streamID))
	return nil
}

// Close finishes every stream. It is safe to call repeatedly.
func (h *Hub[T]) Close() {
	h.closeOnce.Do(func() {
		h.streams.ForEach(func(id uint64, e *entry[T]) bool {
			e.stream.Stop()
			return true
		})
		h.logger.Info("hub closed", slog.Int("streams", int(h.streams.Len())))
	})
}

func (h *Hub[T]) subscription(streamID, subscriptionID uint64) (*entry[T], *stream.Subscription[T], error) {
	e, ok := h.streams.Get(streamID)
	if !ok {
		return nil, nil, ErrStreamNotFound
	}
	sub, ok := e.subs.Get(subscriptionID)
	if !ok {
		return nil, nil, ErrSubscriptionNotFound
	}
	return e, sub, nil
}

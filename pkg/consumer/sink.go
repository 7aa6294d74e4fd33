package consumer

import (
	"context"
	"log/slog"
)

// Source yields items from one subscription, blocking until an item is
// available. streamhub.Hub satisfies this interface.
type Source[T any] interface {
	TakeData(ctx context.Context, streamID, subscriptionID uint64) (T, error)
}

// Sink receives every item a task drains. Implementations must be safe for
// concurrent use; the pool calls Process from many tasks at once.
type Sink[T any] interface {
	Process(ctx context.Context, streamID, subscriptionID uint64, item T) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc[T any] func(ctx context.Context, streamID, subscriptionID uint64, item T) error

func (f SinkFunc[T]) Process(ctx context.Context, streamID, subscriptionID uint64, item T) error {
	return f(ctx, streamID, subscriptionID, item)
}

// LogSink logs every drained item. It is the default sink when none is
// configured.
func LogSink[T any](logger *slog.Logger) Sink[T] {
	return SinkFunc[T](func(_ context.Context, streamID, subscriptionID uint64, item T) error {
		logger.Info("consumed item",
			slog.Uint64("stream_id", streamID),
			slog.Uint64("subscription_id", subscriptionID),
			slog.Any("item", item))
		return nil
	})
}

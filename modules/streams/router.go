package streams

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"
)

// Hub is the multiplexer surface the module routes to. streamhub.Hub[any]
// satisfies it.
type Hub interface {
	CreateStream() uint64
	AddData(streamID uint64, item any) error
	Subscribe(streamID uint64) (uint64, error)
	Unsubscribe(streamID, subscriptionID uint64) error
	TakeData(ctx context.Context, streamID, subscriptionID uint64) (any, error)
	IsEmpty(streamID, subscriptionID uint64) (bool, error)
	HasSubscription(streamID, subscriptionID uint64) error
	SubscriberCount(streamID uint64) (int, error)
	CloseStream(streamID uint64) error
}

// Pool is the drain-control surface. consumer.Pool[any] satisfies it.
type Pool interface {
	AddTask(streamID, subscriptionID uint64) error
	RemoveTask(streamID, subscriptionID uint64)
}

// RouterOptions configures the streams module.
type RouterOptions struct {
	Hub    Hub
	Pool   Pool
	Logger *slog.Logger
}

// Router creates the streams module router.
func Router(opts RouterOptions) chi.Router {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	h := &handlers{
		hub:    opts.Hub,
		pool:   opts.Pool,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Post("/", h.createStream)

	r.Route("/{streamID}", func(r chi.Router) {
		r.Delete("/", h.closeStream)
		r.Post("/data", h.addData)
		r.Get("/subscribers", h.subscriberCount)
		r.Post("/subscriptions", h.subscribe)

		r.Route("/subscriptions/{subscriptionID}", func(r chi.Router) {
			r.Delete("/", h.unsubscribe)
			r.Get("/next", h.takeData)
			r.Get("/empty", h.isEmpty)
			r.Post("/consumer", h.startConsuming)
			r.Delete("/consumer", h.stopConsuming)
		})
	})

	return r
}

package consumer

import (
	"log/slog"
	"time"
)

// Config holds environment-driven pool settings.
type Config struct {
	MaxWorkers      int           `env:"CONSUMER_MAX_WORKERS" envDefault:"10"`       // MaxWorkers bounds how many tasks drain concurrently.
	ShutdownTimeout time.Duration `env:"CONSUMER_SHUTDOWN_TIMEOUT" envDefault:"60s"` // ShutdownTimeout is the grace period Stop waits for running tasks.
}

type options[T any] struct {
	maxWorkers      int
	shutdownTimeout time.Duration
	sink            Sink[T]
	logger          *slog.Logger
}

func defaultOptions[T any]() *options[T] {
	return &options[T]{
		maxWorkers:      10,
		shutdownTimeout: 60 * time.Second,
	}
}

// Option configures a Pool.
type Option[T any] func(*options[T])

// WithMaxWorkers bounds the number of concurrently draining tasks.
// Values below one are ignored.
func WithMaxWorkers[T any](n int) Option[T] {
	return func(o *options[T]) {
		if n > 0 {
			o.maxWorkers = n
		}
	}
}

// WithShutdownTimeout sets the grace period Stop waits for running tasks
// before returning ErrShutdownTimeout. Non-positive values are ignored.
func WithShutdownTimeout[T any](d time.Duration) Option[T] {
	return func(o *options[T]) {
		if d > 0 {
			o.shutdownTimeout = d
		}
	}
}

// WithSink sets the sink items are handed to. Nil sinks are ignored.
func WithSink[T any](s Sink[T]) Option[T] {
	return func(o *options[T]) {
		if s != nil {
			o.sink = s
		}
	}
}

// WithLogger sets the pool logger. Nil loggers are ignored.
func WithLogger[T any](l *slog.Logger) Option[T] {
	return func(o *options[T]) {
		if l != nil {
			o.logger = l
		}
	}
}

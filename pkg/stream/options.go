package stream

import (
	"log/slog"
	"time"
)

type options struct {
	idleInterval time.Duration
	pushInterval time.Duration
	logger       *slog.Logger
}

func defaultOptions() *options {
	return &options{
		idleInterval: 100 * time.Millisecond,
		pushInterval: 10 * time.Millisecond,
	}
}

// Option configures a Stream at construction time.
type Option func(*options)

// WithIdleInterval sets how long the producer loop sleeps when it has nothing
// to do: no subscribers yet, or the read cursor caught up with the source.
// Non-positive values are ignored.
func WithIdleInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.idleInterval = d
		}
	}
}

// WithPushInterval sets the pacing delay between broadcast ticks, bounding the
// delivery rate. Non-positive values are ignored.
func WithPushInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.pushInterval = d
		}
	}
}

// WithLogger sets the logger used by the stream and its subscribers.
// Nil loggers are ignored.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

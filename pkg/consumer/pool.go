package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alphadose/haxmap"
	"github.com/google/uuid"

	"github.com/streamkit/streamkit/pkg/stream"
)

// Pool drains subscriptions through a bounded set of workers. At most one
// live task exists per (stream, subscription) key at any time.
type Pool[T any] struct {
	source Source[T]
	sink   Sink[T]

	poolID uuid.UUID
	tasks  *haxmap.Map[string, *task]
	sem    chan struct{}
	wg     sync.WaitGroup

	mu       sync.Mutex
	stopMu   sync.Mutex // serializes stopping state against WaitGroup adds, and registry removals against each other
	stopping atomic.Bool
	ctx      context.Context
	cancel   context.CancelFunc

	shutdownTimeout time.Duration
	logger          *slog.Logger
}

type task struct {
	cancel context.CancelFunc
}

// New creates a pool draining from source. Items go to the configured sink,
// or to a logging sink when none is set.
func New[T any](source Source[T], opts ...Option[T]) (*Pool[T], error) {
	if source == nil {
		return nil, ErrSourceNil
	}

	o := defaultOptions[T]()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.sink == nil {
		o.sink = LogSink[T](o.logger)
	}

	return &Pool[T]{
		source:          source,
		sink:            o.sink,
		poolID:          uuid.New(),
		tasks:           haxmap.New[string, *task](),
		sem:             make(chan struct{}, o.maxWorkers),
		shutdownTimeout: o.shutdownTimeout,
		logger:          o.logger,
	}, nil
}

// NewFromConfig creates a pool from environment-driven settings. Explicit
// options take precedence over the config values.
func NewFromConfig[T any](cfg Config, source Source[T], opts ...Option[T]) (*Pool[T], error) {
	configOpts := make([]Option[T], 0, 2+len(opts))
	if cfg.MaxWorkers > 0 {
		configOpts = append(configOpts, WithMaxWorkers[T](cfg.MaxWorkers))
	}
	if cfg.ShutdownTimeout > 0 {
		configOpts = append(configOpts, WithShutdownTimeout[T](cfg.ShutdownTimeout))
	}
	configOpts = append(configOpts, opts...)

	return New(source, configOpts...)
}

// Start makes the pool accept tasks. It must be called once before AddTask.
func (p *Pool[T]) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return fmt.Errorf("pool already started")
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.stopping.Store(false)

	p.logger.Info("consumer pool started",
		slog.String("pool_id", p.poolID.String()),
		slog.Int("max_workers", cap(p.sem)))

	return nil
}

// Run starts the pool and returns a function suitable for errgroup.
func (p *Pool[T]) Run(ctx context.Context) func() error {
	return func() error {
		if err := p.Start(ctx); err != nil {
			return err
		}

		<-ctx.Done()

		return p.Stop()
	}
}

// AddTask registers a draining task for the composite key. Registration is
// idempotent: when a task for the pair already exists the call is a logged
// no-op, so one subscription is never drained twice.
func (p *Pool[T]) AddTask(streamID, subscriptionID uint64) error {
	p.mu.Lock()
	if p.ctx == nil {
		p.mu.Unlock()
		return ErrNotStarted
	}
	ctx := p.ctx
	p.mu.Unlock()

	if p.stopping.Load() {
		return ErrPoolClosed
	}

	key := taskKey(streamID, subscriptionID)
	taskCtx, taskCancel := context.WithCancel(ctx)

	t := &task{cancel: taskCancel}
	_, loaded := p.tasks.GetOrCompute(key, func() *task { return t })
	if loaded {
		taskCancel()
		p.logger.Warn("consumer task already registered", slog.String("task_key", key))
		return nil
	}

	// stopMu guards against adding to the WaitGroup after Stop began waiting.
	p.stopMu.Lock()
	if p.stopping.Load() {
		if cur, ok := p.tasks.Get(key); ok && cur == t {
			p.tasks.Del(key)
		}
		p.stopMu.Unlock()
		taskCancel()
		return ErrPoolClosed
	}
	p.wg.Add(1)
	p.stopMu.Unlock()

	go func() {
		defer p.wg.Done()
		// Remove only our own registry entry. After RemoveTask the key may
		// already map to a successor task for the same pair; deleting that
		// would leave the successor draining unregistered.
		defer func() {
			p.stopMu.Lock()
			if cur, ok := p.tasks.Get(key); ok && cur == t {
				p.tasks.Del(key)
			}
			p.stopMu.Unlock()
		}()
		defer taskCancel()

		// Wait for a worker slot; the pool is bounded.
		select {
		case p.sem <- struct{}{}:
			defer func() { <-p.sem }()
		case <-taskCtx.Done():
			return
		}

		p.drain(taskCtx, streamID, subscriptionID)
	}()

	p.logger.Info("consumer task added", slog.String("task_key", key))
	return nil
}

// RemoveTask cancels the in-flight task for the composite key and removes the
// registry entry. Cancellation is cooperative: the task observes it at its
// next blocking-take wakeup. Unknown keys are a logged no-op.
func (p *Pool[T]) RemoveTask(streamID, subscriptionID uint64) {
	key := taskKey(streamID, subscriptionID)

	p.stopMu.Lock()
	t, ok := p.tasks.Get(key)
	if ok {
		t.cancel()
		p.tasks.Del(key)
	}
	p.stopMu.Unlock()

	if !ok {
		p.logger.Warn("consumer task not found", slog.String("task_key", key))
		return
	}
	p.logger.Info("consumer task removed", slog.String("task_key", key))
}

// TaskCount returns the number of registered tasks.
func (p *Pool[T]) TaskCount() int {
	return int(p.tasks.Len())
}

// Stop stops accepting tasks, cancels all running ones, and waits up to the
// shutdown grace period for them to drain. Stragglers are abandoned with
// ErrShutdownTimeout; their self-removal still runs when they eventually
// observe cancellation.
func (p *Pool[T]) Stop() error {
	p.mu.Lock()
	if p.cancel == nil {
		p.mu.Unlock()
		return fmt.Errorf("pool not started")
	}

	p.stopMu.Lock()
	p.stopping.Store(true)
	p.stopMu.Unlock()

	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	cancel()

	p.logger.Info("consumer pool stopping, waiting for tasks to finish",
		slog.String("pool_id", p.poolID.String()))

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("consumer pool stopped", slog.String("pool_id", p.poolID.String()))
		return nil
	case <-time.After(p.shutdownTimeout):
		p.logger.Error("consumer pool shutdown timed out",
			slog.String("pool_id", p.poolID.String()),
			slog.Int("remaining_tasks", p.TaskCount()))
		return ErrShutdownTimeout
	}
}

// drain is the task loop: block-take, hand off to the sink, repeat. The task
// exits on cancellation, on source close, or on a lookup failure (the
// subscription no longer exists); sink failures are logged and draining
// continues.
func (p *Pool[T]) drain(ctx context.Context, streamID, subscriptionID uint64) {
	logger := p.logger.With(
		slog.Uint64("stream_id", streamID),
		slog.Uint64("subscription_id", subscriptionID))

	logger.Info("consumer task draining")

	for {
		item, err := p.source.TakeData(ctx, streamID, subscriptionID)
		if err != nil {
			switch {
			case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
				logger.Info("consumer task cancelled")
			case errors.Is(err, stream.ErrClosed):
				logger.Info("consumer task finished, stream closed")
			default:
				logger.Error("consumer task stopped", slog.String("error", err.Error()))
			}
			return
		}

		if err := p.sink.Process(ctx, streamID, subscriptionID, item); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				logger.Info("consumer task cancelled during processing")
				return
			}
			logger.Error("failed to process item", slog.String("error", err.Error()))
		}
	}
}

func taskKey(streamID, subscriptionID uint64) string {
	return fmt.Sprintf("%d:%d", streamID, subscriptionID)
}

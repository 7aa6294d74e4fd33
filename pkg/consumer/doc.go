// Package consumer runs a bounded pool of draining tasks. Each task is
// permanently assigned to one subscription: it blocks on the source until an
// item arrives, hands the item to a sink, and repeats until it is cancelled
// or the source closes.
//
// Tasks are registered under the composite (stream, subscription) key, and
// registration is idempotent: a second AddTask for the same pair is a no-op,
// so one subscription is never drained by two tasks at once. A task always
// removes its own key on exit, whatever the exit path.
//
//	pool, err := consumer.New[string](hub,
//		consumer.WithMaxWorkers(10),
//		consumer.WithSink(mySink),
//	)
//	if err != nil {
//		// handle error
//	}
//
//	if err := pool.Start(ctx); err != nil {
//		// handle error
//	}
//	defer pool.Stop()
//
//	_ = pool.AddTask(streamID, subscriptionID)
//
// Stop cancels every running task cooperatively (cancellation is observed at
// the next blocking-take wakeup) and waits up to a configurable grace period
// before giving up on stragglers with ErrShutdownTimeout.
package consumer

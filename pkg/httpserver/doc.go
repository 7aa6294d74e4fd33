// Package httpserver wraps net/http with graceful shutdown, signal handling,
// and environment-driven configuration.
//
//	var cfg httpserver.Config
//	config.MustLoad(&cfg)
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		// handle error
//	}
//
// Run blocks until the context is cancelled, SIGINT/SIGTERM arrives, or the
// listener fails, then shuts down within the configured timeout.
package httpserver

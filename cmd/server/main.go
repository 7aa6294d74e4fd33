package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/streamkit/streamkit/modules/streams"
	"github.com/streamkit/streamkit/pkg/config"
	"github.com/streamkit/streamkit/pkg/consumer"
	"github.com/streamkit/streamkit/pkg/httpserver"
	"github.com/streamkit/streamkit/pkg/logger"
	"github.com/streamkit/streamkit/pkg/streamhub"
)

type appConfig struct {
	Log      logger.Config
	HTTP     httpserver.Config
	Consumer consumer.Config
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.NewFromConfig(cfg.Log, logger.WithAttr(slog.String("app", "streamkit")))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := streamhub.New[any](ctx, streamhub.WithLogger[any](log))
	defer hub.Close()

	pool, err := consumer.NewFromConfig[any](cfg.Consumer, hub, consumer.WithLogger[any](log))
	if err != nil {
		log.Error("failed to create consumer pool", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Mount("/api/streams", streams.Router(streams.RouterOptions{
		Hub:    hub,
		Pool:   pool,
		Logger: log,
	}))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(pool.Run(ctx))
	g.Go(func() error { return srv.Run(ctx, r) })

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("server stopped")
}

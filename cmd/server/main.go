package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"employeeapp/internal/platform/config"
	"employeeapp/internal/platform/httpserver"
	"employeeapp/internal/platform/logger"
)

// main loads configuration, wires the application and runs the HTTP server
// and the notification dispatcher until SIGINT or SIGTERM.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app, err := build(ctx, cfg, log, reg)
	if err != nil {
		return fmt.Errorf("build application: %w", err)
	}
	defer app.close()

	if cfg.Auth.JWTSecret == "" {
		log.Warn("JWT_SECRET is not set; login and protected routes will fail with a configuration error")
	}

	srv := httpserver.New(cfg.Addr, app.router)
	log.Info("starting employee api",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"store", cfg.Store.Backend,
		"notify_sink", cfg.Notify.Sink,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.dispatcher.Run(gctx)
	})
	g.Go(func() error {
		// The dispatcher drains after the server stops taking requests.
		defer app.dispatcher.Close()
		return httpserver.Run(gctx, srv, log)
	})
	return g.Wait()
}

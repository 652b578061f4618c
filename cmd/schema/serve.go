package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/birka/schema/internal/api/rest"
	"github.com/birka/schema/internal/api/websocket"
	"github.com/birka/schema/internal/publisher"
	"github.com/birka/schema/internal/scheduler"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func serve() error {
	logger.Infof("Starting %s v%s - Birka sport schedule", serviceName, serviceVersion)

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	logger.WithField("path", cfg.PrioritiesFile).Info("✓ Annotations loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	publishers := publisher.Multi{hub}
	opts := []rest.HandlerOption{rest.WithVersion(serviceName, serviceVersion)}
	if a.cache != nil {
		publishers = append(publishers, publisher.NewRedisStreamPublisher(a.cache.Client()))
		opts = append(opts, rest.WithCache(a.cache))
	}
	opts = append(opts, rest.WithPublisher(publishers))

	warmer := scheduler.NewOrchestrator(a.fetcher, scheduler.Config{
		WarmInterval: cfg.WarmInterval,
		Leagues:      cfg.Leagues,
	}, logger)
	if a.cache != nil && warmer.Enabled() {
		go warmer.Start(ctx)
		logger.Info("✓ Cache warmer started")
	}

	handler := rest.NewHandler(a.schedule, a.annotations, logger, opts...)
	server := rest.NewServer(rest.Config{Port: cfg.Port, StaticDir: cfg.StaticDir}, handler, websocket.NewHandler(hub), logger)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	logger.Infof("✓ %s v%s listening on :%s", serviceName, serviceVersion, cfg.Port)
	logger.Infof("  Schedule:  http://0.0.0.0:%s/schedule", cfg.Port)
	logger.Infof("  WebSocket: ws://0.0.0.0:%s/ws", cfg.Port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
	case err := <-errCh:
		return err
	}

	logger.Info("Shutting down gracefully...")
	cancel()
	warmer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("HTTP server shutdown error")
	}

	logger.Info("Stopped")
	return nil
}

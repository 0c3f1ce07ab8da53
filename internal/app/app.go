// Package app assembles the quicklink service from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/SergeiKhy/quicklink/internal/config"
	"github.com/SergeiKhy/quicklink/internal/handler"
	"github.com/SergeiKhy/quicklink/internal/repository"
	"github.com/SergeiKhy/quicklink/internal/service"
	"go.uber.org/zap"
)

// App owns the stores, services and HTTP server of one process.
type App struct {
	cfg    *config.Config
	logger *zap.Logger

	stores    *repository.Stores
	processor service.ClickProcessor

	Registry service.URLRegistry
	Resolver service.RedirectResolver
	Handler  http.Handler
}

// New connects the configured backend and wires every component. Close releases them.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	stores, err := repository.NewStores(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	alloc := service.NewIdentifierAllocator(stores.Counter, service.AllocatorOptions{
		BatchSize:  cfg.Allocator.BatchSize,
		CounterKey: cfg.Allocator.CounterKey,
		Timeout:    cfg.Storage.Timeout,
	}, logger.Named("allocator"))

	registry := service.NewURLRegistry(stores.URLs, alloc, service.RegistryOptions{
		BaseURL: cfg.App.BaseURL,
		Timeout: cfg.Storage.Timeout,
	}, logger.Named("registry"))

	a := &App{
		cfg:      cfg,
		logger:   logger,
		stores:   stores,
		Registry: registry,
	}

	var clicks service.ClickRecorder
	if cfg.Clicks.Async {
		a.processor = service.NewClickProcessor(stores.URLs, stores.Sink, service.ClickProcessorOptions{
			Workers: cfg.Clicks.Workers,
			Buffer:  cfg.Clicks.Buffer,
			Timeout: cfg.Storage.Timeout,
		}, logger.Named("clicks"))
		a.processor.Start()
		clicks = a.processor
	} else {
		clicks = service.NewSyncClickRecorder(stores.URLs, stores.Sink, cfg.Storage.Timeout, logger.Named("clicks"))
	}

	a.Resolver = service.NewRedirectResolver(stores.URLs, clicks, service.ResolverOptions{
		Timeout: cfg.Storage.Timeout,
	}, logger.Named("resolver"))

	a.Handler = handler.NewRouter(handler.RouterConfig{
		Registry: a.Registry,
		Resolver: a.Resolver,
		BaseURL:  cfg.App.BaseURL,
		Health:   stores.Ping,
		Logger:   logger,
	})

	return a, nil
}

// Run serves HTTP on the configured port until ctx is canceled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+a.cfg.App.Port)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      a.Handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Server starting", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.App.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	a.logger.Info("Server exited")
	return nil
}

// Close drains pending click events and releases storage connections.
func (a *App) Close() error {
	if a.processor != nil {
		a.processor.Stop()
	}
	return a.stores.Close()
}

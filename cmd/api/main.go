package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/feiralocal-backend/api/routes"
	"github.com/angelmondragon/feiralocal-backend/internal/notifications"
	"github.com/angelmondragon/feiralocal-backend/internal/persistence"
	"github.com/angelmondragon/feiralocal-backend/internal/scheduler"
	"github.com/angelmondragon/feiralocal-backend/internal/storefront"
	"github.com/angelmondragon/feiralocal-backend/pkg/config"
	"github.com/angelmondragon/feiralocal-backend/pkg/logger"
	"github.com/angelmondragon/feiralocal-backend/pkg/metrics"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	storefrontMetrics := metrics.NewStorefrontMetrics(registry)

	store, err := openStorage(ctx, cfg, logg)
	if err != nil {
		return err
	}
	defer store.close(context.Background(), logg)

	gateway, err := persistence.NewGateway(persistence.GatewayParams{
		Backend: store.backend,
		Logger:  logg,
		Metrics: storefrontMetrics,
	})
	if err != nil {
		return err
	}

	linker, err := notifications.NewLinker(cfg.Notify.BaseURL)
	if err != nil {
		return err
	}

	sf, err := storefront.New(ctx, storefront.Params{
		Gateway:         gateway,
		Linker:          linker,
		Logger:          logg,
		Metrics:         storefrontMetrics,
		FilterCacheSize: cfg.Catalog.FilterCacheSize,
		RenderTick:      cfg.Catalog.RenderTick,
		DemoOrders:      cfg.Demo.SeedOrders,
		Seed:            cfg.Demo.RandomSeed,
	})
	if err != nil {
		return err
	}

	debouncer := scheduler.NewDebouncer(cfg.Catalog.SearchDebounce)

	addr := ":" + cfg.App.Port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"storage": cfg.Storage.Backend,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Deps{
			Storefront:  sf,
			Storage:     sf,
			Debouncer:   debouncer,
			Replay:      store.replay,
			HTTPMetrics: metrics.NewHTTPMetrics(registry),
			Metrics:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return serve(logCtx, server, sf, debouncer, logg)
}

type lifecycle interface {
	Run(ctx context.Context) error
	Close(ctx context.Context) error
}

type flusher interface {
	Flush() bool
}

// serve runs the refresh loop and the HTTP server until ctx is cancelled or
// the server fails. Either way the loop is stopped, pending work is flushed
// and the final save runs before it returns the server error, if any.
func serve(ctx context.Context, server *http.Server, sf lifecycle, pending flusher, logg *logger.Logger) error {
	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	refreshDone := make(chan error, 1)
	go func() {
		refreshDone <- sf.Run(runCtx)
	}()

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	var failure error
	select {
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
	case failure = <-serveErr:
		if failure != nil {
			logg.Error(ctx, "http server failed", failure)
		}
	}
	cancelRun()

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(shutdownCtx, "http shutdown failed", err)
	}
	// a pending search keystroke still reaches the saved state
	pending.Flush()
	if err := sf.Close(shutdownCtx); err != nil {
		logg.Error(shutdownCtx, "final save failed", err)
	}

	select {
	case err := <-refreshDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(shutdownCtx, "refresh loop stopped", err)
		}
	case <-shutdownCtx.Done():
	}

	logg.Info(shutdownCtx, "api server stopped")
	return failure
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/usershub/internal/config"
	httpx "github.com/geocoder89/usershub/internal/http"
	"github.com/geocoder89/usershub/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	if err := run(); err != nil {
		slog.Error("startup failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	// Load the config set up
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.OTLPEndpoint,
		Env:         cfg.Env,
	})
	if err != nil {
		return err
	}

	var (
		prom *observability.Prom
		reg  *prometheus.Registry
	)
	if cfg.MetricsEnabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		prom = observability.NewProm(reg)
	}

	store, closeStore, err := openStore(ctx, cfg, prom, log)
	if err != nil {
		return err
	}

	users, closeCache, err := withCache(ctx, cfg, store, prom, log)
	if err != nil {
		closeStore(context.Background())
		return err
	}

	deps := httpx.Deps{
		Users: users,
		Ping:  store.Ping,
		Prom:  prom,
	}
	if reg != nil {
		deps.Gatherer = reg
	}

	// set up routers with the log
	router := httpx.NewRouter(log, cfg, deps)

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)

	// start server using a concurrent go-routine driven anonymous function.
	go func() {
		log.Info(fmt.Sprintf("Server running in %s mode on port %d", cfg.Env, cfg.Port))

		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Graceful shutdown
	var runErr error
	select {
	case <-ctx.Done():
		log.Info("server shutting down")
	case runErr = <-serverErr:
		if runErr != nil {
			log.Error("server failed", "err", runErr)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
	}

	closeCache()
	closeStore(shutdownCtx)

	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error("tracer shutdown failed", "err", err)
	}

	log.Info("shutdown complete")
	return runErr
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"staybook/internal/config"
	"staybook/internal/session"
	"staybook/pkg/factory"
	"staybook/pkg/logger"
	"staybook/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.InfoLevel, nil).Fatal("Invalid configuration", map[string]interface{}{"error": err.Error()})
	}

	log := logger.New(logger.LogLevel(cfg.LogLevel), nil)
	log.Info("Starting staybook", map[string]interface{}{
		"env":     cfg.AppEnv,
		"storage": cfg.Storage.Backend,
	})

	shutdownTracing := tracing.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appFactory, err := factory.NewFactory(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialise application", map[string]interface{}{"error": err.Error()})
	}
	defer appFactory.Close()

	warmUp := appFactory.GetWarmUpManager()
	if err := warmUp.WarmUpHotels(ctx); err != nil {
		log.Warn("Hotel cache warm-up failed", map[string]interface{}{"error": err.Error()})
	}
	if cfg.Cache.TTL > time.Second {
		go warmUp.ScheduledWarmUp(ctx, cfg.Cache.TTL-time.Second)
	}

	go session.RunJanitor(ctx, appFactory.GetSessionManager().Store(), cfg.Session.SweepInterval, log)
	go appFactory.GetRateLimiter().Cleanup(ctx)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           appFactory.Handler(),
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       4 * cfg.Server.Timeout,
	}

	go func() {
		log.Info("HTTP server listening", map[string]interface{}{"port": cfg.Server.Port})

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down", map[string]interface{}{})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("Tracer shutdown failed", map[string]interface{}{"error": err.Error()})
	}

	log.Info("Server stopped", map[string]interface{}{})
}

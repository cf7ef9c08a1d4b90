package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"vanta/internal/amqp"
	"vanta/internal/auth"
	"vanta/internal/backend"
	"vanta/internal/cache"
	"vanta/internal/cli"
	apphttp "vanta/internal/http"
	"vanta/internal/log"
	"vanta/internal/middleware/ratelimit"
	"vanta/internal/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "vanta-api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	logger, err := cli.SetupLogger(cfg, os.Stdout, log.ComponentApp)
	if err != nil {
		return err
	}
	if !backend.BackendType(cfg.DataBackend).ServesAPI() {
		return fmt.Errorf("data backend %q cannot serve the API", cfg.DataBackend)
	}

	ctx := context.Background()
	res, err := cli.OpenBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer res.Cleanup()

	shared := services.Shared{Logger: logger}
	if cfg.AMQPURL != "" {
		client, err := amqp.ConnectWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, 5, logger)
		if err != nil {
			return err
		}
		defer client.Close()
		shared.Publisher = client
		logger.Info("Publishing change events", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("Change events disabled - no AMQP_URL provided")
	}

	var lists *cache.LRUCache[[]byte]
	if cfg.CacheSize > 0 {
		lists = cache.NewLRUCache[[]byte](cfg.CacheSize, cfg.CacheTTL)
		shared.Cache = lists
	}

	srv, err := apphttp.NewServer(res.Adapters.Services(shared), lists, apphttp.Options{
		Addr:   ":" + cfg.Port,
		Logger: logger,
		Auth: auth.Config{
			APIToken:  cfg.APIToken,
			JWTSecret: cfg.JWTSecret,
			TokenTTL:  cfg.TokenTTL,
		},
		RateLimit: ratelimit.Config{Requests: cfg.RateLimit, Window: cfg.RateWindow},
		Ready:     res.Ping,
	})
	if err != nil {
		return err
	}

	stopped := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	logger.Info("Starting vanta API", log.FieldOperation, log.OpStartup, "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve on port %s: %w", cfg.Port, err)
	}

	<-stopped.Done()
	logger.Info("Server stopped gracefully")
	return nil
}

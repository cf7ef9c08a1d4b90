package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"vanta/internal/amqp"
	"vanta/internal/cli"
	"vanta/internal/log"
	"vanta/internal/services"
	"vanta/internal/sheets"
	gsheet "vanta/internal/sheets/google"
	mem "vanta/internal/sheets/memory"
	"vanta/internal/worker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "vanta-worker: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	logger, err := cli.SetupLogger(cfg, os.Stdout, log.ComponentWorker)
	if err != nil {
		return err
	}
	logger.Info("Starting vanta-worker", log.FieldOperation, log.OpStartup)

	ctx := cli.GracefulShutdown(logger, 30*time.Second, nil)

	res, err := cli.OpenBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer res.Cleanup()

	var writer sheets.TableWriter
	if cfg.SheetsEnabled() {
		creds, err := cfg.GoogleCredentials()
		if err != nil {
			return err
		}
		client, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, creds)
		if err != nil {
			return fmt.Errorf("initialize Google Sheets client: %w", err)
		}
		writer = client
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		writer = mem.New()
		logger.Info("Google Sheets disabled - mirroring to memory")
	}

	set := res.Adapters.Services(services.Shared{Logger: logger})
	mirror := worker.NewMirror(set.Exporters(), writer,
		worker.WithConcurrency(cfg.SyncConcurrency),
		worker.WithLogger(logger))

	var client *amqp.Client
	if cfg.AMQPURL != "" {
		client, err = amqp.ConnectWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, 10, logger)
		if err != nil {
			return err
		}
		defer client.Close()
	} else {
		logger.Info("Skipping change event consumption - no AMQP_URL provided")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return mirror.Run(ctx, cfg.SyncInterval) })
	if client != nil {
		g.Go(func() error { return client.ConsumeChanges(ctx, mirror.HandleChange) })
	}

	err = g.Wait()
	synced, failed := mirror.Stats()
	logger.Info("Worker stopped", "synced", synced, "failed", failed)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

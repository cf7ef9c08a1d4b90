package main

import (
	"context"
	"fmt"
	"os"

	"vanta/internal/auth"
	"vanta/internal/cli"
	"vanta/internal/log"
	"vanta/internal/sheets"
	gsheet "vanta/internal/sheets/google"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	// stdout carries command output
	logger, err := cli.SetupLogger(cfg, os.Stderr, log.ComponentCLI)
	if err != nil {
		return err
	}

	ctx := context.Background()
	res, err := cli.OpenBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer res.Cleanup()

	app := &cli.App{
		Adapters: res.Adapters,
		Auth: auth.Config{
			APIToken:  cfg.APIToken,
			JWTSecret: cfg.JWTSecret,
			TokenTTL:  cfg.TokenTTL,
		},
		PageSize: cfg.APIPageSize,
		Logger:   logger,
		Out:      os.Stdout,
	}
	if cfg.SheetsEnabled() {
		app.Sheets = func(ctx context.Context) (sheets.TableWriter, error) {
			creds, err := cfg.GoogleCredentials()
			if err != nil {
				return nil, err
			}
			return gsheet.New(ctx, cfg.GoogleSpreadsheetID, creds)
		}
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"findash/internal/api"
	"findash/internal/config"
	"findash/internal/events"
	"findash/internal/export/sheets"
	applog "findash/internal/log"
	"findash/internal/store"
	"findash/internal/token"
	"findash/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("configuration validation failed", "error", err)
		os.Exit(1)
	}

	logger := applog.New(slog.LevelInfo, "findash-worker")
	applog.SetDefault(logger)
	logger.Info("starting findash-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}
	if cfg.SheetsSpreadsheetID == "" {
		logger.Error("GOOGLE_SPREADSHEET_ID is required for the worker")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The worker shares the CLI's persisted credentials and talks to the
	// API through the same gateway, renewal included.
	tokens, err := token.NewSQLiteStore(cfg.TokenDBPath)
	if err != nil {
		logger.Error("failed to open the token store", "error", err, "path", cfg.TokenDBPath)
		os.Exit(1)
	}
	defer tokens.Close()

	gw := api.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout, tokens, api.NopNavigator, logger)
	stores := store.NewStores(gw, nil, logger)

	exporter, err := sheets.New(ctx, cfg.SheetsSpreadsheetID, cfg.SheetsSheetName)
	if err != nil {
		logger.Error("failed to initialize the sheets exporter", "error", err)
		os.Exit(1)
	}

	amqpClient, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, cfg.AMQPPrefetch)
	if err != nil {
		logger.Error("failed to initialize the AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	// Account and category names are needed to render sheet rows.
	stores.PrefetchSupporting(ctx)

	mirror := worker.NewMirror(gw, stores, exporter, logger)

	go func() {
		if err := amqpClient.ConsumeMutations(ctx, func(msg *events.MutationMessage) error {
			return mirror.Handle(ctx, msg)
		}); err != nil && err != context.Canceled {
			logger.Error("mutation consumption failed", "error", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigChan:
		logger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
	}
}

package main

import (
	"context"
	"os"
	"time"

	"haushalt/internal/amqp"
	"haushalt/internal/cli"
	"haushalt/internal/config"
	"haushalt/internal/journal/google"
	"haushalt/internal/log"
	"haushalt/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting haushalt-worker")

	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateJournal)

	writer, err := google.New(context.Background(), google.Options{
		SpreadsheetID: cfg.GoogleSpreadsheetID,
		Sheet:         cfg.GoogleJournalSheet,
		Logger:        logger,
		Credentials: google.Credentials{
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
			OAuthClientJSON:    cfg.GoogleOAuthClientJSON,
			OAuthClientFile:    cfg.GoogleOAuthClientFile,
			OAuthTokenJSON:     cfg.GoogleOAuthTokenJSON,
			OAuthTokenFile:     cfg.GoogleOAuthTokenFile,
		},
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets journal", log.FieldError, err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		if err := amqpClient.Close(); err != nil {
			logger.Error("AMQP close error", log.FieldError, err)
		}
	})

	w := worker.NewJournalWorker(writer, logger)
	if err := w.Run(ctx, amqpClient, 5*time.Minute); err != nil {
		logger.Error("Journal worker stopped", log.FieldError, err)
		_ = amqpClient.Close()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	processed, failed := w.Stats()
	logger.Info("Worker shutdown complete", log.FieldCount, processed, "failed", failed)
}

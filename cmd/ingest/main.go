package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/smukkama/weather-summary/internal/database"
	"github.com/smukkama/weather-summary/internal/logging"
	"github.com/smukkama/weather-summary/internal/queue"
	"github.com/smukkama/weather-summary/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log, "ingest")
	slog.SetDefault(logger)

	db, err := database.Connect(cfg.Database.Driver, cfg.Database.DataSourceName())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.Database.MigrationsDir()); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	if err := queue.CreateTopic(cfg.Kafka.Brokers, cfg.Kafka.TopicReadings, cfg.Kafka.NumPartitions, 1); err != nil {
		// usually "topic already exists"
		logger.Warn("could not create topic", "topic", cfg.Kafka.TopicReadings, "error", err)
	}

	consumer := queue.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicReadings, "ingest-group")
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	batchWriter := queue.NewBatchWriter(consumer, db, cfg.Kafka.IngestBatchSize, cfg.Kafka.IngestFlush, logger)
	batchWriter.Start(ctx)

	// Log consumer stats periodically
	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := consumer.Stats()
				logger.Info("consumer stats", "messages", stats.Messages, "bytes", stats.Bytes, "errors", stats.Errors)
			}
		}
	}()

	logger.Info("ingest service running",
		"topic", cfg.Kafka.TopicReadings,
		"batch_size", cfg.Kafka.IngestBatchSize,
		"flush_interval", cfg.Kafka.IngestFlush,
	)

	<-ctx.Done()

	logger.Info("shutting down")
	batchWriter.Stop()
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smukkama/weather-summary/internal/aggregation"
	"github.com/smukkama/weather-summary/internal/artifact"
	"github.com/smukkama/weather-summary/internal/database"
	"github.com/smukkama/weather-summary/internal/index"
	"github.com/smukkama/weather-summary/internal/logging"
	"github.com/smukkama/weather-summary/internal/pipeline"
	"github.com/smukkama/weather-summary/internal/queue"
	"github.com/smukkama/weather-summary/internal/reading"
	"github.com/smukkama/weather-summary/internal/timer"
	"github.com/smukkama/weather-summary/pkg/config"
)

const dailyJobID = "daily-aggregation"

func main() {
	input := flag.String("input", "", "envelope JSON file to aggregate (default: readings table)")
	once := flag.Bool("once", false, "run once and exit instead of scheduling daily runs")
	sinks := flag.String("sinks", "artifact,database,index", "comma-separated outputs: artifact, database, index, kafka")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log, "aggregator")
	slog.SetDefault(logger)

	if err := run(cfg, logger, *input, *once, *sinks); err != nil {
		logger.Error("aggregator failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, input string, once bool, sinkList string) error {
	engineCfg, err := cfg.Aggregation.EngineConfig()
	if err != nil {
		return err
	}
	engine, err := aggregation.NewEngine(engineCfg, logger)
	if err != nil {
		return err
	}

	wanted := make(map[string]bool)
	for _, name := range strings.Split(sinkList, ",") {
		if name = strings.TrimSpace(name); name != "" {
			wanted[name] = true
		}
	}

	var db *database.DB
	if input == "" || wanted["database"] {
		db, err = database.Connect(cfg.Database.Driver, cfg.Database.DataSourceName())
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.RunMigrations(cfg.Database.MigrationsDir()); err != nil {
			return err
		}
		logger.Info("connected to database", "driver", db.Driver())
	}

	var source pipeline.Source
	if input != "" {
		source = &reading.FileSource{Path: input, Policy: cfg.Aggregation.Policy(), Logger: logger}
	} else {
		source = &database.WindowSource{DB: db, Lookback: cfg.Aggregation.Lookback, Location: engineCfg.Location}
	}

	var outputs []pipeline.Sink
	if wanted["artifact"] {
		outputs = append(outputs, artifact.NewWriter(cfg.Aggregation.OutputDir))
	}
	if wanted["database"] {
		outputs = append(outputs, &database.SummarySink{DB: db})
	}
	if wanted["index"] {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		outputs = append(outputs, index.NewStore(rdb, cfg.Redis.IndexKey))
	}
	if wanted["kafka"] {
		producer := queue.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicSummaries)
		defer producer.Close()
		outputs = append(outputs, queue.NewSummaryPublisher(producer))
	}

	runner := pipeline.NewRunner(source, engine, outputs, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if once {
		_, err := runner.Run(ctx)
		return err
	}

	scheduler := timer.NewScheduler(1)
	scheduler.Start()
	defer scheduler.Stop()

	err = scheduler.ScheduleDaily(dailyJobID, engineCfg.Location, cfg.Aggregation.DailyTime,
		func(ctx context.Context) {
			if _, err := runner.Run(ctx); err != nil {
				logger.Error("scheduled run failed", "error", err)
			}
		},
		func(next time.Time) {
			logger.Info("next aggregation scheduled", "at", next.Format(time.RFC3339))
		},
	)
	if err != nil {
		return err
	}

	logger.Info("aggregation service running", "daily_time", cfg.Aggregation.DailyTime, "timezone", cfg.Aggregation.Timezone)

	<-ctx.Done()
	if next, ok := scheduler.Next(dailyJobID); ok {
		logger.Info("shutting down", "skipped_run", next.Format(time.RFC3339))
	} else {
		logger.Info("shutting down")
	}
	scheduler.Cancel(dailyJobID)

	stats := scheduler.Stats()
	logger.Info("scheduler drained", "pending_jobs", stats.ScheduledJobs, "workers", stats.Workers)
	return nil
}

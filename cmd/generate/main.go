package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/smukkama/weather-summary/internal/artifact"
	"github.com/smukkama/weather-summary/internal/logging"
	"github.com/smukkama/weather-summary/internal/protocol"
	"github.com/smukkama/weather-summary/internal/queue"
	"github.com/smukkama/weather-summary/internal/reading"
	"github.com/smukkama/weather-summary/internal/synth"
	"github.com/smukkama/weather-summary/pkg/config"
)

func main() {
	days := flag.Int("days", 7, "number of days of data ending now")
	interval := flag.Duration("interval", 5*time.Minute, "sampling interval")
	smoothing := flag.Int("smooth", 4, "moving-average half width")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "random seed")
	out := flag.String("out", "data-generated.json", "envelope file to write (empty to skip)")
	quoted := flag.Bool("strings", true, "write temp/humid as strings like the station export")
	publish := flag.Bool("publish", false, "publish readings to the readings topic")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log, "generate")
	slog.SetDefault(logger)

	loc, err := time.LoadLocation(cfg.Aggregation.Timezone)
	if err != nil {
		logger.Error("failed to load timezone", "timezone", cfg.Aggregation.Timezone, "error", err)
		os.Exit(1)
	}

	end := time.Now().Truncate(*interval)
	readings, err := synth.Generate(synth.Options{
		Start:     end.AddDate(0, 0, -*days),
		End:       end,
		Interval:  *interval,
		Smoothing: *smoothing,
		Seed:      *seed,
		Location:  loc,
	})
	if err != nil {
		logger.Error("failed to generate readings", "error", err)
		os.Exit(1)
	}

	if *out != "" {
		if err := writeEnvelope(*out, readings, *quoted); err != nil {
			logger.Error("failed to write envelope", "error", err)
			os.Exit(1)
		}
		logger.Info("envelope written", "path", *out, "readings", len(readings), "seed", *seed)
	}

	if *publish {
		if err := publishReadings(cfg, readings); err != nil {
			logger.Error("failed to publish readings", "error", err)
			os.Exit(1)
		}
		logger.Info("readings published", "topic", cfg.Kafka.TopicReadings, "readings", len(readings))
	}
}

func writeEnvelope(path string, readings []reading.Reading, quoted bool) error {
	env := reading.NewEnvelope(readings)
	if quoted {
		env = synth.StringEnvelope(readings)
	}

	data, err := artifact.Encode(env)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func publishReadings(cfg *config.Config, readings []reading.Reading) error {
	producer := queue.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicReadings)
	defer producer.Close()

	const batchSize = 500
	ctx := context.Background()
	now := time.Now().UTC()

	batch := make([]kafka.Message, 0, batchSize)
	for _, rd := range readings {
		value, err := protocol.EncodeReadingMessage(protocol.NewReadingMessage(cfg.Kafka.StationID, rd, now))
		if err != nil {
			return fmt.Errorf("failed to encode reading: %w", err)
		}
		batch = append(batch, kafka.Message{Key: []byte(cfg.Kafka.StationID), Value: value})

		if len(batch) == batchSize {
			if err := producer.PublishBatch(ctx, batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		return producer.PublishBatch(ctx, batch)
	}
	return nil
}

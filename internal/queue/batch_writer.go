package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/smukkama/weather-summary/internal/database"
	"github.com/smukkama/weather-summary/internal/protocol"
)

// MessageSource is the consuming side of a Kafka reader.
type MessageSource interface {
	Consume(ctx context.Context) (kafka.Message, error)
	Commit(ctx context.Context, msgs ...kafka.Message) error
}

// ReadingStore persists decoded readings.
type ReadingStore interface {
	InsertReadings(ctx context.Context, rs []*database.StoredReading) error
}

// BatchWriter consumes reading messages and batch-writes them to the store
type BatchWriter struct {
	consumer      MessageSource
	store         ReadingStore
	logger        *slog.Logger
	batchSize     int
	flushInterval time.Duration
	retryBackoff  time.Duration
	stopCh        chan struct{}
	wg            sync.WaitGroup
}

const (
	defaultRetryBackoff = time.Second
	maxRetryBackoff     = 30 * time.Second
)

// NewBatchWriter creates a new batch writer
func NewBatchWriter(consumer MessageSource, store ReadingStore, batchSize int, flushInterval time.Duration, logger *slog.Logger) *BatchWriter {
	if logger == nil {
		logger = slog.Default()
	}
	if batchSize < 1 {
		batchSize = 1
	}
	return &BatchWriter{
		consumer:      consumer,
		store:         store,
		logger:        logger,
		batchSize:     batchSize,
		flushInterval: flushInterval,
		retryBackoff:  defaultRetryBackoff,
		stopCh:        make(chan struct{}),
	}
}

// Start begins consuming and writing to the store
func (bw *BatchWriter) Start(ctx context.Context) {
	bw.wg.Add(1)
	go bw.run(ctx)
}

// Stop stops the batch writer, flushing what it holds
func (bw *BatchWriter) Stop() {
	close(bw.stopCh)
	bw.wg.Wait()
}

func (bw *BatchWriter) run(ctx context.Context) {
	defer bw.wg.Done()

	consumeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var batch []kafka.Message
	ticker := time.NewTicker(bw.flushInterval)
	defer ticker.Stop()

	msgChan := make(chan kafka.Message, 10)
	go func() {
		defer close(msgChan)
		for {
			msg, err := bw.consumer.Consume(consumeCtx)
			if err != nil {
				if consumeCtx.Err() != nil || errors.Is(err, context.Canceled) {
					return
				}
				bw.logger.Warn("consumer error", "error", err)
				continue
			}
			select {
			case msgChan <- msg:
			case <-consumeCtx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-bw.stopCh:
			// Flush remaining batch before stopping
			bw.flush(context.WithoutCancel(ctx), batch, false)
			return

		case <-ctx.Done():
			bw.flush(context.WithoutCancel(ctx), batch, false)
			return

		case <-ticker.C:
			if len(batch) > 0 {
				bw.logger.Debug("flush interval reached", "messages", len(batch))
				if !bw.flush(ctx, batch, true) {
					return
				}
				batch = nil
			}

		case msg, ok := <-msgChan:
			if !ok {
				bw.flush(context.WithoutCancel(ctx), batch, false)
				return
			}
			batch = append(batch, msg)

			if len(batch) >= bw.batchSize {
				if !bw.flush(ctx, batch, true) {
					return
				}
				batch = nil
			}
		}
	}
}

// flush stores the batch in one transaction and then commits its offsets.
// Undecodable messages are logged and committed so they are not redelivered.
// With retry set, a failed store or commit is retried with backoff until it
// succeeds or the writer is stopped. flush reports false when it gave up; the
// offsets of the batch are then left uncommitted and nothing after them is
// consumed.
func (bw *BatchWriter) flush(ctx context.Context, batch []kafka.Message, retry bool) bool {
	if len(batch) == 0 {
		return true
	}

	readings, rejected := DecodeBatch(batch)
	for _, r := range rejected {
		bw.logger.Warn("dropping reading message",
			"partition", r.Message.Partition,
			"offset", r.Message.Offset,
			"error", r.Err,
		)
	}

	stored := len(readings) == 0
	backoff := bw.retryBackoff
	for attempt := 1; ; attempt++ {
		if !stored {
			if err := bw.store.InsertReadings(ctx, readings); err != nil {
				bw.logger.Error("failed to store readings", "count", len(readings), "attempt", attempt, "error", err)
			} else {
				stored = true
			}
		}
		if stored {
			err := bw.consumer.Commit(ctx, batch...)
			if err == nil {
				break
			}
			bw.logger.Error("failed to commit offsets", "attempt", attempt, "error", err)
		}

		if !retry || !bw.wait(ctx, backoff) {
			bw.logger.Warn("giving up on batch, offsets left uncommitted",
				"messages", len(batch),
				"stored", stored,
			)
			return false
		}
		backoff = min(backoff*2, maxRetryBackoff)
	}

	bw.logger.Info("flushed readings", "stored", len(readings), "dropped", len(rejected))
	return true
}

// wait sleeps for d unless the writer is stopped or ctx ends first.
func (bw *BatchWriter) wait(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return true
	case <-bw.stopCh:
		return false
	case <-ctx.Done():
		return false
	}
}

// Rejected is a message that could not be turned into a reading.
type Rejected struct {
	Message kafka.Message
	Err     error
}

// DecodeBatch converts reading messages into store rows.
func DecodeBatch(batch []kafka.Message) ([]*database.StoredReading, []Rejected) {
	var out []*database.StoredReading
	var rejected []Rejected

	for _, msg := range batch {
		rm, err := protocol.DecodeReadingMessage(msg.Value)
		if err != nil {
			rejected = append(rejected, Rejected{Message: msg, Err: fmt.Errorf("failed to decode message: %w", err)})
			continue
		}

		rd, err := rm.Reading()
		if err != nil {
			rejected = append(rejected, Rejected{Message: msg, Err: err})
			continue
		}

		stationID := rm.StationID
		if stationID == "" {
			stationID = string(msg.Key)
		}
		receivedAt := rm.ReceivedAt
		if receivedAt.IsZero() {
			receivedAt = msg.Time
		}

		out = append(out, &database.StoredReading{
			StationID:   stationID,
			Timestamp:   rd.Timestamp,
			Temperature: rd.Temperature,
			Humidity:    rd.Humidity,
			ReceivedAt:  receivedAt.UTC(),
		})
	}

	return out, rejected
}

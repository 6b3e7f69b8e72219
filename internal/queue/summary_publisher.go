package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/smukkama/weather-summary/internal/aggregation"
	"github.com/smukkama/weather-summary/internal/protocol"
)

// SummaryPublisher announces a run's summaries on the summaries topic,
// one message per day keyed by date plus one overall message.
type SummaryPublisher struct {
	publisher Publisher
}

func NewSummaryPublisher(p Publisher) *SummaryPublisher {
	return &SummaryPublisher{publisher: p}
}

func (sp *SummaryPublisher) Name() string { return "kafka" }

func (sp *SummaryPublisher) Write(ctx context.Context, runID string, res *aggregation.Result) error {
	msgs, err := SummaryMessages(runID, res)
	if err != nil {
		return err
	}
	if err := sp.publisher.PublishBatch(ctx, msgs); err != nil {
		return fmt.Errorf("failed to publish summaries: %w", err)
	}
	return nil
}

// SummaryMessages builds the Kafka messages for a run in date order, with
// the overall document last.
func SummaryMessages(runID string, res *aggregation.Result) ([]kafka.Message, error) {
	msgs := make([]kafka.Message, 0, len(res.Days)+1)

	for i := range res.Days {
		day := &res.Days[i]
		payload, err := json.Marshal(day)
		if err != nil {
			return nil, fmt.Errorf("failed to encode daily summary %s: %w", day.Date, err)
		}
		msg, err := summaryMessage(&protocol.SummaryMessage{
			RunID:   runID,
			Kind:    protocol.SummaryKindDaily,
			Date:    day.Date,
			Payload: payload,
		})
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}

	payload, err := json.Marshal(res.Overall)
	if err != nil {
		return nil, fmt.Errorf("failed to encode overall summary: %w", err)
	}
	msg, err := summaryMessage(&protocol.SummaryMessage{
		RunID:   runID,
		Kind:    protocol.SummaryKindOverall,
		Payload: payload,
	})
	if err != nil {
		return nil, err
	}

	return append(msgs, msg), nil
}

func summaryMessage(sm *protocol.SummaryMessage) (kafka.Message, error) {
	value, err := protocol.EncodeSummaryMessage(sm)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to encode summary message: %w", err)
	}
	return kafka.Message{Key: []byte(sm.Key()), Value: value}, nil
}

package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// Publisher sends keyed messages to one topic.
type Publisher interface {
	PublishBatch(ctx context.Context, messages []kafka.Message) error
}

// Producer writes keyed messages to a single topic. Messages with the same
// key land on the same partition.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &Producer{writer: w}
}

// PublishBatch blocks until every message is acknowledged.
func (p *Producer) PublishBatch(ctx context.Context, messages []kafka.Message) error {
	if len(messages) == 0 {
		return nil
	}
	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		return fmt.Errorf("failed to publish %d messages to %s: %w", len(messages), p.writer.Topic, err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// Consumer reads a topic as part of a consumer group. Offsets move only
// through Commit.
type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     groupID,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
	})
	return &Consumer{reader: r}
}

// Consume fetches the next message without committing it.
func (c *Consumer) Consume(ctx context.Context) (kafka.Message, error) {
	msg, err := c.reader.FetchMessage(ctx)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to fetch message: %w", err)
	}
	return msg, nil
}

func (c *Consumer) Commit(ctx context.Context, msgs ...kafka.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	if err := c.reader.CommitMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to commit %d offsets: %w", len(msgs), err)
	}
	return nil
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

func (c *Consumer) Stats() kafka.ReaderStats {
	return c.reader.Stats()
}

// CreateTopic makes sure topic exists. An existing topic is left as it is.
func CreateTopic(brokers []string, topic string, numPartitions, replicationFactor int) error {
	if len(brokers) == 0 {
		return errors.New("no kafka brokers configured")
	}

	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return fmt.Errorf("failed to dial broker %s: %w", brokers[0], err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("failed to find controller: %w", err)
	}

	ctrl, err := kafka.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	if err != nil {
		return fmt.Errorf("failed to dial controller: %w", err)
	}
	defer ctrl.Close()

	err = ctrl.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     numPartitions,
		ReplicationFactor: replicationFactor,
	})
	if err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
		return fmt.Errorf("failed to create topic %s: %w", topic, err)
	}

	slog.Info("topic ready", "topic", topic, "partitions", numPartitions)
	return nil
}

// Package kafka publishes content events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/folio-api/internal/events"
	"github.com/phrazzld/folio-api/internal/platform/logger"
	"github.com/phrazzld/folio-api/internal/store"
	kgo "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kgo.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kgo.Message) error
	Close() error
}

// Config holds the producer settings.
type Config struct {
	Brokers []string
	Topic   string
}

// Publisher writes each event as a JSON message keyed by the event key, so
// all events for one post or tag land on the same partition in order.
// It implements events.EventHandler.
type Publisher struct {
	w      messageWriter
	topic  string
	logger *slog.Logger
}

var _ events.EventHandler = (*Publisher)(nil)

// NewPublisher creates a synchronous producer for cfg.Topic.
func NewPublisher(cfg Config, logger *slog.Logger) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("%w: no kafka brokers configured", store.ErrConfiguration)
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("%w: kafka topic is empty", store.ErrConfiguration)
	}

	w := &kgo.Writer{
		Addr:                   kgo.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kgo.Hash{},
		RequiredAcks:           kgo.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return newPublisher(w, cfg.Topic, logger), nil
}

func newPublisher(w messageWriter, topic string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		w:      w,
		topic:  topic,
		logger: logger.With(slog.String("component", "kafka_publisher"), slog.String("topic", topic)),
	}
}

// HandleEvent implements events.EventHandler.
func (p *Publisher) HandleEvent(ctx context.Context, event *events.ContentEvent) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", event.ID, err)
	}

	msg := kgo.Message{
		Key:   []byte(event.Key),
		Value: value,
		Time:  event.CreatedAt,
		Headers: []kgo.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		logger.FromContextOrDefault(ctx, p.logger).Error("failed to publish event",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", event.Type),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to publish event %s: %w", event.ID, err)
	}
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *Publisher) Close() error {
	return p.w.Close()
}

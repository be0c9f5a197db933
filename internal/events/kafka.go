package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pricehive_backend/internal/config"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaPublisher writes events to a single topic. The writer is async: Publish returns once
// messages are buffered and delivery errors are reported through the completion callback.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewKafkaPublisher builds an async writer for cfg.KafkaEventsTopic.
func NewKafkaPublisher(cfg *config.Config, logger *zap.Logger) *KafkaPublisher {
	logger = logger.Named("KafkaPublisher")
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaEventsTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchSize:    50,
		BatchTimeout: 200 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warn("Kafka delivery failed", zap.Int("messages", len(messages)), zap.Error(err))
			}
		},
	}
	return &KafkaPublisher{writer: writer, logger: logger}
}

func (p *KafkaPublisher) Publish(ctx context.Context, events ...Event) error {
	msgs := make([]kafka.Message, 0, len(events))
	for _, ev := range events {
		msg, err := toMessage(ev)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to enqueue %d events: %w", len(msgs), err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func toMessage(ev Event) (kafka.Message, error) {
	value, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to encode %s event: %w", ev.Type, err)
	}
	return kafka.Message{
		Key:   []byte(ev.Key),
		Value: value,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.Type)},
		},
	}, nil
}

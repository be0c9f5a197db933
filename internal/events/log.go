package events

import (
	"context"

	"pricehive_backend/internal/config"

	"go.uber.org/zap"
)

// LogPublisher records events in the application log. Used when no brokers are configured.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.Named("EventLog")}
}

func (p *LogPublisher) Publish(_ context.Context, events ...Event) error {
	for _, ev := range events {
		p.logger.Info("Domain event",
			zap.String("event_id", ev.ID),
			zap.String("event_type", string(ev.Type)),
			zap.String("key", ev.Key),
			zap.Any("payload", ev.Payload),
		)
	}
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// NewPublisher picks Kafka when brokers are configured and the log publisher otherwise.
func NewPublisher(cfg *config.Config, logger *zap.Logger) (Publisher, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("KAFKA_BROKERS not set, domain events go to the log.")
		return NewLogPublisher(logger), func() {}
	}
	p := NewKafkaPublisher(cfg, logger)
	logger.Info("Publishing domain events to Kafka",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("topic", cfg.KafkaEventsTopic),
	)
	return p, func() {
		if err := p.Close(); err != nil {
			logger.Error("Error closing Kafka publisher", zap.Error(err))
		}
	}
}

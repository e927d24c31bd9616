package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/ledger-synth/internal/config"
	"github.com/ledger-synth/internal/domain/shared"
)

// GenerationRequestProducer publishes generation requests keyed by account,
// so every run of one account lands on the same partition.
type GenerationRequestProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

// NewGenerationRequestProducer creates the producer and ensures the topic exists
func NewGenerationRequestProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*GenerationRequestProducer, error) {
	if cfg.GenerationTopic == "" {
		return nil, fmt.Errorf("kafka generation topic is not configured")
	}

	conn, err := kafka.DialContext(ctx, "tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for generation producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.GenerationTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure generation topic %s exists: %w", cfg.GenerationTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.GenerationTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.MaxWait,
	}

	return &GenerationRequestProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.GenerationTopic,
	}, nil
}

// PublishRequest enqueues a validated request
func (p *GenerationRequestProducer) PublishRequest(ctx context.Context, req *shared.GenerationRequest) error {
	return p.Publish(ctx, req.AccountID, req)
}

func (p *GenerationRequestProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal generation request: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish generation request",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish message to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published generation request",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *GenerationRequestProducer) Close() error {
	p.logger.Info("Closing generation request producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}

package producers

import (
	"context"

	"github.com/segmentio/kafka-go"

	"github.com/ledger-synth/internal/domain/shared"
)

// RequestPublisher enqueues generation requests
type RequestPublisher interface {
	PublishRequest(ctx context.Context, req *shared.GenerationRequest) error
	Close() error
}

// DeadLetterPublisher handles publishing messages to a Dead Letter Queue
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason shared.FailureReason, detail string) error
	Close() error
}

// KafkaWriter wraps kafka.Writer methods for testing
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

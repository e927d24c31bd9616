package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ledger-synth/internal/domain/shared"
	"github.com/ledger-synth/internal/generator"
	"github.com/ledger-synth/internal/synthesizer/service"
)

// GenerationRequestHandler handles incoming generation requests from Kafka
type GenerationRequestHandler struct {
	generationService service.GenerationService
	failures          service.FailureRecorder
	logger            *slog.Logger
}

// NewGenerationRequestHandler creates a new handler
func NewGenerationRequestHandler(
	logger *slog.Logger,
	generationService service.GenerationService,
	failures service.FailureRecorder,
) *GenerationRequestHandler {
	return &GenerationRequestHandler{
		generationService: generationService,
		failures:          failures,
		logger:            logger,
	}
}

// HandleMessage runs one generation request. Requests that can never succeed
// are parked and committed; transient failures are returned so the consumer
// redelivers them.
func (h *GenerationRequestHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var request shared.GenerationRequest
	if err := json.Unmarshal(value, &request); err != nil {
		h.logger.Error("Failed to unmarshal generation request from Kafka message",
			"error", err,
			"message_key", string(key),
		)
		return h.park(ctx, key, value, shared.FailureReasonInvalidRequest, err)
	}
	if err := request.Validate(); err != nil {
		h.logger.Error("Rejected invalid generation request", "error", err, "message_key", string(key))
		return h.park(ctx, key, value, shared.FailureReasonInvalidRequest, err)
	}

	logger := h.logger.With("run_id", request.RunID.String(), "account_id", request.AccountID)
	if request.CorrelationID != "" {
		logger = logger.With("correlation_id", request.CorrelationID)
	}
	logger.Info("Received generation request", "profile", request.Profile)

	result, err := h.generationService.Generate(ctx, &request)
	switch {
	case err == nil:
		logger.Info("Generation request handled",
			"status", string(result.Status),
			"persisted", result.Persisted,
			"failed_batches", result.FailedBatches,
		)
		return nil
	case errors.Is(err, generator.ErrUnknownProfile{}):
		return h.park(ctx, key, value, shared.FailureReasonUnknownProfile, err)
	case errors.Is(err, shared.ErrInvalidRequest):
		return h.park(ctx, key, value, shared.FailureReasonInvalidRequest, err)
	case errors.Is(err, service.ErrBatchPersist{}):
		// the failed batch was already parked by the run
		logger.Error("Generation run aborted", "error", err)
		return nil
	default:
		logger.Error("Failed to generate account history", "error", err)
		return fmt.Errorf("generation run %s failed: %w", request.RunID, err)
	}
}

func (h *GenerationRequestHandler) park(ctx context.Context, key, value []byte, reason shared.FailureReason, cause error) error {
	if err := h.failures.RecordRequestFailure(ctx, string(key), value, reason, cause.Error()); err != nil {
		h.logger.Error("Failed to publish message to DLQ",
			"dlq_error", err,
			"original_error", cause,
			"message_key", string(key),
		)
		// Allow Kafka retries
		return fmt.Errorf("failed to park message %s: %w", string(key), cause)
	}
	h.logger.Info("Published unprocessable message to DLQ", "message_key", string(key), "reason", string(reason))
	return nil
}

package components

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ledger-synth/internal/domain/shared"
	"github.com/ledger-synth/internal/domain/transaction"
	"github.com/ledger-synth/internal/platform/messaging/producers"
	"github.com/ledger-synth/internal/synthesizer/service"
)

// FailedBatch is the dead-letter body of a rolled back batch. It carries the
// views so the batch can be replayed by hand.
type FailedBatch struct {
	RunID        uuid.UUID           `json:"run_id"`
	AccountID    string              `json:"account_id"`
	Currency     string              `json:"currency"`
	Week         transaction.WeekKey `json:"week"`
	FirstID      transaction.ID      `json:"first_id"`
	LastID       transaction.ID      `json:"last_id"`
	Transactions []transaction.View  `json:"transactions"`
}

type FailureRecorderImpl struct {
	dlq    producers.DeadLetterPublisher
	logger *slog.Logger
}

// NewFailureRecorder records to dlq. A nil dlq only logs.
func NewFailureRecorder(dlq producers.DeadLetterPublisher, logger *slog.Logger) service.FailureRecorder {
	return &FailureRecorderImpl{
		dlq:    dlq,
		logger: logger,
	}
}

// RecordRequestFailure parks a request that will never succeed
func (r *FailureRecorderImpl) RecordRequestFailure(ctx context.Context, key string, raw []byte, reason shared.FailureReason, detail string) error {
	r.logger.Warn("Recording failed generation request", "key", key, "reason", string(reason), "detail", detail)
	return r.publish(ctx, key, raw, reason, detail)
}

// RecordBatchFailure parks a batch that was rolled back
func (r *FailureRecorderImpl) RecordBatchFailure(ctx context.Context, runID uuid.UUID, batch transaction.Batch, cause error) error {
	first, last := batch.IDRange()
	body, err := json.Marshal(FailedBatch{
		RunID:        runID,
		AccountID:    batch.AccountID,
		Currency:     batch.Currency,
		Week:         batch.Week,
		FirstID:      first,
		LastID:       last,
		Transactions: transaction.Views(batch.Records),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal failed batch %s: %w", batch.Week, err)
	}

	r.logger.Warn("Recording failed batch",
		"run_id", runID.String(),
		"account_id", batch.AccountID,
		"week", batch.Week.String(),
		"records", batch.Len(),
	)
	return r.publish(ctx, batch.AccountID, body, shared.FailureReasonBatchPersist, cause.Error())
}

func (r *FailureRecorderImpl) publish(ctx context.Context, key string, body []byte, reason shared.FailureReason, detail string) error {
	if r.dlq == nil {
		r.logger.Warn("DLQ not configured, failure only logged", "key", key, "reason", string(reason))
		return nil
	}
	err := r.dlq.PublishToDLQ(ctx, key, body, reason, detail)
	if errors.Is(err, producers.ErrDLQDisabled) {
		r.logger.Warn("DLQ disabled, failure only logged", "key", key, "reason", string(reason))
		return nil
	}
	return err
}

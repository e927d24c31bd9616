package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ledger-synth/internal/domain/outbox"
	"github.com/ledger-synth/internal/domain/shared"
	"github.com/ledger-synth/internal/domain/transaction"
)

// Projector applies one committed batch to the read model
type Projector interface {
	Project(ctx context.Context, message *outbox.Message) error
}

// ReadModelProjector upserts a batch's views into the document store and
// marks the message processed. Replaying a message is harmless.
type ReadModelProjector struct {
	outboxRepo outbox.Repository
	viewRepo   transaction.ViewRepository
	logger     *slog.Logger
}

func NewReadModelProjector(
	outboxRepo outbox.Repository,
	viewRepo transaction.ViewRepository,
	logger *slog.Logger,
) Projector {
	return &ReadModelProjector{
		outboxRepo: outboxRepo,
		viewRepo:   viewRepo,
		logger:     logger,
	}
}

func (p *ReadModelProjector) Project(ctx context.Context, message *outbox.Message) error {
	payload, err := message.Batch()
	if err != nil {
		p.logger.Error("Failed to unmarshal batch from outbox payload", "outbox_id", message.ID, "error", err)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	logger := p.logger.With("outbox_id", message.ID, "account_id", payload.AccountID, "week", payload.Week.String())

	if err := p.viewRepo.Upsert(ctx, payload.Transactions); err != nil {
		logger.Error("Failed to upsert batch into read model", "error", err)
		return fmt.Errorf("failed to project batch %s of account %s: %w", payload.Week, payload.AccountID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED", "error", err)
		return fmt.Errorf("read model write for batch %s OK, but failed to mark outbox %d as PROCESSED: %w", payload.Week, message.ID, err)
	}

	logger.Info("Batch projected into read model",
		"records", len(payload.Transactions),
		"first_id", payload.FirstID.String(),
		"last_id", payload.LastID.String(),
	)
	return nil
}

package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ledger-synth/internal/domain/outbox"
	"github.com/ledger-synth/internal/domain/transaction"
)

type OutboxManagerImpl struct {
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

func NewOutboxManager(outboxRepo outbox.Repository, logger *slog.Logger) *OutboxManagerImpl {
	return &OutboxManagerImpl{
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// CreateBatchEntry writes the outbox message of a batch inside tx
func (m *OutboxManagerImpl) CreateBatchEntry(ctx context.Context, tx pgx.Tx, runID uuid.UUID, batch transaction.Batch) error {
	outboxMessage, err := outbox.NewBatchMessage(runID, batch)
	if err != nil {
		m.logger.Error("Failed to create new outbox message (marshal payload)",
			"run_id", runID.String(),
			"week", batch.Week.String(),
			"error", err,
		)
		return fmt.Errorf("failed to create outbox message payload for batch %s: %w", batch.Week, err)
	}

	if err = m.outboxRepo.WithTx(tx).Create(ctx, outboxMessage); err != nil {
		m.logger.Error("Failed to create outbox message",
			"run_id", runID.String(),
			"account_id", batch.AccountID,
			"week", batch.Week.String(),
			"error", err,
		)
		return fmt.Errorf("failed to create outbox message for batch %s: %w", batch.Week, err)
	}
	m.logger.Debug("Outbox message created",
		"run_id", runID.String(),
		"week", batch.Week.String(),
		"outbox_id", outboxMessage.ID,
	)
	return nil
}

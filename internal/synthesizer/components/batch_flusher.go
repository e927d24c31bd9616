package components

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ledger-synth/internal/domain/transaction"
	"github.com/ledger-synth/internal/platform/persistence"
	"github.com/ledger-synth/internal/synthesizer/service"
)

// BatchFlusherImpl writes a week batch and its outbox message in one database
// transaction. Either every row of the batch commits or none does.
type BatchFlusherImpl struct {
	db            persistence.TxBeginner
	txRepo        transaction.Repository
	outboxManager *OutboxManagerImpl
	logger        *slog.Logger
}

func NewBatchFlusher(db persistence.TxBeginner, txRepo transaction.Repository, outboxManager *OutboxManagerImpl, logger *slog.Logger) service.BatchFlusher {
	return &BatchFlusherImpl{
		db:            db,
		txRepo:        txRepo,
		outboxManager: outboxManager,
		logger:        logger,
	}
}

// Flush returns the number of rows written. Failures are reported as
// service.ErrBatchPersist.
func (f *BatchFlusherImpl) Flush(ctx context.Context, runID uuid.UUID, batch transaction.Batch) (int, error) {
	if batch.Len() == 0 {
		return 0, nil
	}
	first, last := batch.IDRange()
	logger := f.logger.With(
		"run_id", runID.String(),
		"account_id", batch.AccountID,
		"week", batch.Week.String(),
	)

	var written int64
	err := persistence.RunInTx(ctx, f.db, func(tx pgx.Tx) error {
		n, err := f.txRepo.WithTx(tx).BulkInsert(ctx, batch.Currency, batch.Records)
		if err != nil {
			return err
		}
		written = n
		return f.outboxManager.CreateBatchEntry(ctx, tx, runID, batch)
	})
	if err != nil {
		logger.Error("Failed to persist batch", "first_id", first.String(), "last_id", last.String(), "error", err)
		return 0, service.NewErrBatchPersist(batch, err)
	}

	logger.Info("Batch persisted",
		"records", written,
		"first_id", first.String(),
		"last_id", last.String(),
	)
	return int(written), nil
}

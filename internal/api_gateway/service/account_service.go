package service

import (
	"context"
	"log/slog"

	"github.com/ledger-synth/internal/domain/account"
	"github.com/ledger-synth/internal/domain/ledger"
	"github.com/ledger-synth/internal/domain/outbox"
)

// AccountServiceImpl implements the AccountService interface
type AccountServiceImpl struct {
	accountRepo  account.Repository
	outboxRepo   outbox.Repository
	snapshotRepo ledger.SnapshotRepository
	logger       *slog.Logger
}

// NewAccountService creates a new account service
func NewAccountService(logger *slog.Logger, accountRepo account.Repository, outboxRepo outbox.Repository, snapshotRepo ledger.SnapshotRepository) AccountService {
	return &AccountServiceImpl{
		accountRepo:  accountRepo,
		outboxRepo:   outboxRepo,
		snapshotRepo: snapshotRepo,
		logger:       logger,
	}
}

// GetAccountByID retrieves an account and counts the batches not yet projected
// into the read model.
func (s *AccountServiceImpl) GetAccountByID(ctx context.Context, id string) (*AccountSummary, error) {
	acc, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	pending, err := s.outboxRepo.CountPending(ctx, id)
	if err != nil {
		s.logger.Error("Failed to count pending batches", "account_id", id, "error", err)
		return nil, err
	}

	return &AccountSummary{Account: acc, PendingBatches: pending}, nil
}

func (s *AccountServiceImpl) GetSnapshot(ctx context.Context, id string) (*ledger.Snapshot, error) {
	return s.snapshotRepo.GetByAccountID(ctx, id)
}

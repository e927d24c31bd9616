package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ledger-synth/internal/domain/transaction"
)

// TransactionServiceImpl implements the TransactionService interface
type TransactionServiceImpl struct {
	viewRepo transaction.ViewRepository
	logger   *slog.Logger
}

// NewTransactionService creates a new transaction service
func NewTransactionService(logger *slog.Logger, viewRepo transaction.ViewRepository) TransactionService {
	return &TransactionServiceImpl{
		viewRepo: viewRepo,
		logger:   logger,
	}
}

// GetTransactionByID retrieves a transaction by its ID. Returns nil if not found
func (s *TransactionServiceImpl) GetTransactionByID(ctx context.Context, transactionID transaction.ID) (*transaction.View, error) {
	res, err := s.viewRepo.GetByTransactionID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, transaction.ErrTransactionNotFound{}) {
			s.logger.Info("Transaction not found", "transaction_id", transactionID.String())
			return nil, nil
		}
		s.logger.Error("Failed to get transaction by ID", "transaction_id", transactionID.String(), "error", err)
		return nil, err
	}
	return res, nil
}

// GetTransactionsByAccountID retrieves paginated list of transactions for an account
// Returns views, total count, and any error
func (s *TransactionServiceImpl) GetTransactionsByAccountID(ctx context.Context, filter transaction.ViewFilter, page, perPage int) ([]*transaction.View, int64, error) {
	offset := (page - 1) * perPage

	views, err := s.viewRepo.Find(ctx, filter, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.viewRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return views, total, nil
}
